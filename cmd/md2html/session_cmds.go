package main

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/alnah/go-md2html"
)

// minIDSuffix is the shortest id fragment accepted to select a job.
const minIDSuffix = 4

// resolveJob finds a job by 1-based number, full id or unique id suffix.
// Job ids are UUIDv7: the leading digits encode the creation time, so
// jobs are told apart by the random tail that list shows.
func resolveJob(s *md2html.Session, ident string) (int, error) {
	// An id tail may be all digits, so numbers out of range fall through
	// to id matching.
	n, err := strconv.Atoi(ident)
	if err == nil && n >= 1 && n <= len(s.Jobs) {
		return n - 1, nil
	}
	if err == nil && len(ident) < minIDSuffix {
		return -1, fmt.Errorf("%w: no job %d (session has %d)", ErrUsage, n, len(s.Jobs))
	}

	if len(ident) < minIDSuffix {
		return -1, fmt.Errorf("%w: job id %q is too short", ErrUsage, ident)
	}
	found := -1
	for i, j := range s.Jobs {
		if j.ID == ident {
			return i, nil
		}
		if strings.HasSuffix(j.ID, ident) {
			if found != -1 {
				return -1, fmt.Errorf("%w: job id %q is ambiguous", ErrUsage, ident)
			}
			found = i
		}
	}
	if found == -1 {
		return -1, fmt.Errorf("%w: no job with id %q", ErrUsage, ident)
	}
	return found, nil
}

func runAdd(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("add", &common, env.Stderr, printAddUsage)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	pos := fs.Args()
	if len(pos) < 1 || len(pos) > 2 {
		return fmt.Errorf("%w: add takes <input.md> [output.html]", ErrUsage)
	}
	output := ""
	if len(pos) == 2 {
		output = pos[1]
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}
	job, err := mgr.AddJob(pos[0], output)
	if job.ID == "" {
		return err
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "Added %d: %s -> %s\n", len(mgr.Session().Jobs), job.Input, job.Output)
	}
	return a.savedOrHint(err)
}

func runEdit(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("edit", &common, env.Stderr, printEditUsage)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	pos := fs.Args()
	if len(pos) < 2 || len(pos) > 3 {
		return fmt.Errorf("%w: edit takes <n|id> <input.md> [output.html]", ErrUsage)
	}
	output := ""
	if len(pos) == 3 {
		output = pos[2]
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}
	idx, err := resolveJob(mgr.Session(), pos[0])
	if err != nil {
		return err
	}
	ok, err := mgr.EditJob(idx, pos[1], output)
	if !ok {
		return err
	}
	if !common.quiet {
		job := mgr.Session().Jobs[idx]
		fmt.Fprintf(env.Stdout, "Updated %d: %s -> %s\n", idx+1, job.Input, job.Output)
	}
	return a.savedOrHint(err)
}

func runRemove(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("remove", &common, env.Stderr, printRemoveUsage)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: remove takes at least one <n|id>", ErrUsage)
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}

	// Resolve everything first: numbers refer to the list before removal.
	snap := mgr.Session()
	var errs error
	var ids []string
	for _, ident := range fs.Args() {
		idx, err := resolveJob(snap, ident)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		ids = append(ids, snap.Jobs[idx].ID)
	}

	var saveErr error
	for _, id := range ids {
		ok, err := mgr.RemoveJobByID(id)
		if err != nil {
			saveErr = err
		}
		if ok && !common.quiet {
			fmt.Fprintf(env.Stdout, "Removed %s\n", shortID(id))
		}
	}

	return multierr.Append(errs, a.savedOrHint(saveErr))
}

func runList(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("list", &common, env.Stderr, printListUsage)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: list takes no arguments", ErrUsage)
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}
	printSession(env.Stdout, mgr.Session(), a.statePath(), common.verbose)
	return nil
}

func runCSS(args []string, env *Environment) error {
	var common commonFlags
	var f cssFlags
	fs := newFlagSet("css", &common, env.Stderr, printCSSUsage)
	fs.BoolVar(&f.clear, "clear", false, "remove the stylesheet")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if f.clear == (fs.NArg() == 1) || fs.NArg() > 1 {
		return fmt.Errorf("%w: css takes <path> or --clear", ErrUsage)
	}
	path := ""
	if !f.clear {
		path = fs.Arg(0)
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}
	err = mgr.SetCSS(path)
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "CSS: %s\n", orNone(path))
	}
	return a.savedOrHint(err)
}

func runTitle(args []string, env *Environment) error {
	var common commonFlags
	var f titleFlags
	fs := newFlagSet("title", &common, env.Stderr, printTitleUsage)
	fs.BoolVar(&f.clear, "clear", false, "remove the title")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if f.clear == (fs.NArg() > 0) {
		return fmt.Errorf("%w: title takes <text> or --clear", ErrUsage)
	}
	title := strings.Join(fs.Args(), " ")

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}
	err = mgr.SetTitle(title)
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "Title: %s\n", orNone(title))
	}
	return a.savedOrHint(err)
}

func runOpenAfter(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("open-after", &common, env.Stderr, printOpenAfterUsage)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: open-after takes on or off", ErrUsage)
	}
	open, err := parseOnOff(fs.Arg(0))
	if err != nil {
		return err
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(false)
	if err != nil {
		return err
	}
	err = mgr.SetOpenAfterConvert(open)
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "Open after convert: %s\n", onOff(open))
	}
	return a.savedOrHint(err)
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", ErrUsage, s)
}
