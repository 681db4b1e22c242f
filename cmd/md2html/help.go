package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session commands (changes are saved immediately):")
	fmt.Fprintln(w, "  add         Add a Markdown file to convert")
	fmt.Fprintln(w, "  edit        Change the paths of a job")
	fmt.Fprintln(w, "  remove      Remove jobs")
	fmt.Fprintln(w, "  list        Show the session")
	fmt.Fprintln(w, "  css         Set or clear the shared stylesheet")
	fmt.Fprintln(w, "  title       Set or clear the shared title")
	fmt.Fprintln(w, "  open-after  Open outputs in the browser after a run (on|off)")
	fmt.Fprintln(w, "  run         Convert every job of the session")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other commands:")
	fmt.Fprintln(w, "  convert     Convert one file without touching the session")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2html help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --state <path>        Session file (default: user config dir)")
	fmt.Fprintln(w, "      --style <name>        Style prepended to the CSS: default, github, minimal")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto, 1 = sequential)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show details and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2HTML_CONFIG, MD2HTML_STATE, MD2HTML_STYLE, MD2HTML_WORKERS, MD2HTML_LOG_LEVEL")
}

func printAddUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html add <input.md> [output.html] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Append a job. Paths are checked when the job runs, not now.")
	fmt.Fprintln(w, "Without an output, the input path with an .html extension is used.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printEditUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html edit <n|id> <input.md> [output.html] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Replace the paths of job n (as shown by 'md2html list') or of the job")
	fmt.Fprintln(w, "whose id ends with the short id shown there. The job keeps its id and position.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printRemoveUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html remove <n|id>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove jobs by number or short id. Unknown jobs are reported and skipped.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printListUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html list [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the jobs and shared settings of the session.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printCSSUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html css <path> | md2html css --clear")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Set the stylesheet embedded in every output. The file is read at run time;")
	fmt.Fprintln(w, "its content is inserted verbatim into a <style> block.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --clear               Remove the stylesheet")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printTitleUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html title <text> | md2html title --clear")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Set the <title> of every output. Without a title, each document uses")
	fmt.Fprintln(w, "its input file name.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --clear               Remove the title")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printOpenAfterUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html open-after on|off")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open each successful output in the default browser after 'md2html run'.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html run [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert every job in order. A failing job does not stop the others.")
	fmt.Fprintln(w, "Output directories must exist; output files are overwritten.")
	fmt.Fprintln(w, "With --workers > 1, jobs writing the same output race and the last write wins.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html convert <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a single file. The session is neither read nor changed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input with .html)")
	fmt.Fprintln(w, "      --css <path>          CSS file embedded in the document")
	fmt.Fprintln(w, "      --title <text>        Document title (default: input file name)")
	fmt.Fprintln(w, "      --open                Open the result in the browser")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// commandUsage maps command names to their usage printers.
var commandUsage = map[string]func(io.Writer){
	"add":        printAddUsage,
	"edit":       printEditUsage,
	"remove":     printRemoveUsage,
	"list":       printListUsage,
	"css":        printCSSUsage,
	"title":      printTitleUsage,
	"open-after": printOpenAfterUsage,
	"run":        printRunUsage,
	"convert":    printConvertUsage,
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	usage, ok := commandUsage[args[0]]
	if !ok {
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	usage(env.Stdout)
	return ExitSuccess
}
