package hints

// Notes:
// - ForBrowserOpen tests cannot use t.Parallel() because they use t.Setenv()
//   and swap the package-level IsInContainer variable.

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestForBrowserOpen_Headless(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")

	hint := ForBrowserOpen()
	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("hint %q lacks prefix", hint)
	}
	if !strings.Contains(hint, "open-after off") {
		t.Errorf("expected suggestion to disable preview, got %q", hint)
	}
}

func TestForBrowserOpen_Desktop(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("DISPLAY", ":0")

	hint := ForBrowserOpen()
	if !strings.Contains(hint, "manually") {
		t.Errorf("expected manual open suggestion, got %q", hint)
	}
}

func TestForInputNotFound(t *testing.T) {
	t.Parallel()

	if got := ForInputNotFound("notes.md"); !strings.Contains(got, "current directory") {
		t.Errorf("relative hint = %q", got)
	}

	abs := "/docs/notes.md"
	if runtime.GOOS == "windows" {
		abs = `C:\docs\notes.md`
	}
	if got := ForInputNotFound(abs); !strings.Contains(got, "md2html edit") {
		t.Errorf("absolute hint = %q", got)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{"md2html.yaml", "/home/u/.config/go-md2html/md2html.yaml"})
	if !strings.Contains(got, "--config") || !strings.Contains(got, "create /home/u/.config/go-md2html/md2html.yaml") {
		t.Errorf("ForConfigNotFound() = %q", got)
	}

	if got := ForConfigNotFound(nil); strings.Contains(got, "create") {
		t.Errorf("no user path expected, got %q", got)
	}
}

func TestForOutputDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing", "out.html")
	if got := ForOutputDirectory(missing); !strings.Contains(got, "not created automatically") {
		t.Errorf("missing dir hint = %q", got)
	}

	existing := filepath.Join(dir, "out.html")
	if got := ForOutputDirectory(existing); !strings.Contains(got, "writable") {
		t.Errorf("existing dir hint = %q", got)
	}
}

func TestForStyleNotFound(t *testing.T) {
	t.Parallel()

	if got := ForStyleNotFound(nil); got != "" {
		t.Errorf("ForStyleNotFound(nil) = %q, want empty", got)
	}
	if got := ForStyleNotFound([]string{"default", "github"}); !strings.Contains(got, "available: default, github") {
		t.Errorf("ForStyleNotFound() = %q", got)
	}
}

func TestForStateFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(os.TempDir(), "session.yaml")
	if got := ForStateFile(path); !strings.Contains(got, path) || !strings.Contains(got, "--state") {
		t.Errorf("ForStateFile() = %q", got)
	}
}

func TestFormatHints(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}
