// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alnah/go-md2html/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserOpen returns hints for preview launch failures.
// Detects headless environments where no browser can appear.
func ForBrowserOpen() string {
	var hints []string

	inCI := os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
	headless := runtime.GOOS == "linux" &&
		os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""

	if inCI || IsInContainer() || headless {
		hints = append(hints, "no desktop session detected; disable with 'md2html open-after off'")
	} else {
		hints = append(hints, "open the output file manually")
	}

	return formatHints(hints)
}

// ForInputNotFound returns hints for a missing Markdown input.
// Relative job paths resolve against the working directory of each run.
func ForInputNotFound(path string) string {
	if filepath.IsAbs(path) {
		return format("check the file still exists or fix it with 'md2html edit'")
	}
	return format("relative paths resolve from the current directory; use an absolute path")
}

// ForConfigNotFound suggests --config and the user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), ".config/go-md2html") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory(outputPath string) string {
	dir := filepath.Dir(outputPath)
	if !fileutil.DirExists(dir) {
		return format("output directories are not created automatically; create " + dir + " first")
	}
	return format("check " + dir + " is writable")
}

// ForStyleNotFound lists the available style names.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForStateFile returns hints when the session file cannot be written.
func ForStateFile(path string) string {
	return format("changes are kept for this run only; check permissions of " + path + " or pass --state")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
