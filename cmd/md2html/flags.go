package main

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	state   string
	style   string
	workers int
	quiet   bool
	verbose bool
}

// workersUnset detects if --workers was explicitly set, since 0 means auto.
const workersUnset = -1

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.state, "state", "", "session file path")
	fs.StringVar(&f.style, "style", "", "built-in or custom style prepended to the CSS")
	fs.IntVarP(&f.workers, "workers", "w", workersUnset, "parallel workers (0 = auto, 1 = sequential)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show details and timing")
}

// newFlagSet returns a FlagSet with the common flags that reports parse
// errors instead of exiting.
func newFlagSet(name string, f *commonFlags, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	addCommonFlags(fs, f)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// cssFlags holds flags of the css command.
type cssFlags struct {
	clear bool
}

// titleFlags holds flags of the title command.
type titleFlags struct {
	clear bool
}

// convertFlags holds flags of the one-shot convert command.
type convertFlags struct {
	output string
	css    string
	title  string
	open   bool
}

func addConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: input with .html)")
	fs.StringVar(&f.css, "css", "", "CSS file embedded in the document")
	fs.StringVar(&f.title, "title", "", "document title (default: input file name)")
	fs.BoolVar(&f.open, "open", false, "open the result in the browser")
}
