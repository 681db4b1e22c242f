package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/alnah/go-md2html"
)

// batchError summarizes the failed jobs of a run. Unwrap exposes every
// job error so exit codes can be derived with errors.Is.
type batchError struct {
	failed int
	total  int
	errs   error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d jobs failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.errs }

// jobErrors aggregates the errors of failed results, nil when all passed.
func jobErrors(results []md2html.Result) error {
	var errs error
	failed := 0
	for _, r := range results {
		if r.OK() {
			continue
		}
		failed++
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
	}
	if errs == nil {
		return nil
	}
	return &batchError{failed: failed, total: len(results), errs: errs}
}

func runRun(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("run", &common, env.Stderr, printRunUsage)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: run takes no arguments", ErrUsage)
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	mgr, err := a.sessionManager(true)
	if err != nil {
		return err
	}
	if len(mgr.Session().Jobs) == 0 {
		if !common.quiet {
			fmt.Fprintln(env.Stdout, "No jobs in session; add one with 'md2html add <input.md>'")
		}
		return nil
	}

	p := newResultPrinter(env, common.quiet, common.verbose)
	for progress := range mgr.RunAllAsync(ctx) {
		p.add(progress)
	}
	return jobErrors(p.finish())
}

func runConvert(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	var f convertFlags
	fs := newFlagSet("convert", &common, env.Stderr, printConvertUsage)
	addConvertFlags(fs, &f)
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: convert takes exactly one <input.md>", ErrUsage)
	}

	a, err := newApp(&common, env)
	if err != nil {
		return err
	}
	defer a.close()

	// One-shot: the same manager, over a session that lives in memory only.
	mgr, err := a.manager(&memoryStore{}, true)
	if err != nil {
		return err
	}
	if _, err := mgr.AddJob(fs.Arg(0), f.output); err != nil {
		return err
	}
	if err := mgr.SetCSS(f.css); err != nil {
		return err
	}
	if err := mgr.SetTitle(f.title); err != nil {
		return err
	}
	if err := mgr.SetOpenAfterConvert(f.open); err != nil {
		return err
	}

	p := newResultPrinter(env, common.quiet, common.verbose)
	for _, r := range mgr.RunAll(ctx) {
		if !r.OK() {
			return withHint(fmt.Errorf("%s: %w", r.Job.Input, r.Err), hintFor(r))
		}
		p.print(r)
	}
	return nil
}

// memoryStore keeps a session for the lifetime of the process.
type memoryStore struct {
	session *md2html.Session
}

var _ md2html.Store = (*memoryStore)(nil)

func (s *memoryStore) Load() (*md2html.Session, error) {
	if s.session == nil {
		return nil, md2html.ErrStateNotFound
	}
	return s.session.Clone(), nil
}

func (s *memoryStore) Save(sess *md2html.Session) error {
	s.session = sess.Clone()
	return nil
}
