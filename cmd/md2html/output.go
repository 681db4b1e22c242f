package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/hints"
)

// resultPrinter writes job results as they arrive, in job order.
type resultPrinter struct {
	env     *Environment
	quiet   bool
	verbose bool

	results []md2html.Result
	pending map[int]md2html.Result
	next    int
}

func newResultPrinter(env *Environment, quiet, verbose bool) *resultPrinter {
	return &resultPrinter{env: env, quiet: quiet, verbose: verbose, pending: make(map[int]md2html.Result)}
}

// add buffers out-of-order progress from parallel workers.
func (p *resultPrinter) add(pr md2html.Progress) {
	p.pending[pr.Index] = pr.Result
	for {
		r, ok := p.pending[p.next]
		if !ok {
			return
		}
		delete(p.pending, p.next)
		p.next++
		p.print(r)
	}
}

func (p *resultPrinter) print(r md2html.Result) {
	p.results = append(p.results, r)
	env := p.env

	switch {
	case r.Status == md2html.StatusCanceled:
		fmt.Fprintf(env.Stderr, "SKIPPED %s: canceled\n", r.Job.Input)
	case !r.OK():
		fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Job.Input, r.Err, hintFor(r))
	case p.quiet:
	case p.verbose:
		fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.Job.Input, r.Job.Output, r.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintf(env.Stdout, "Created %s\n", r.Job.Output)
	}

	if r.Notice != "" {
		printNotice(env.Stderr, r)
	}
}

// finish prints the summary and returns every result in job order.
func (p *resultPrinter) finish() []md2html.Result {
	var succeeded, failed, canceled int
	for _, r := range p.results {
		switch {
		case r.OK():
			succeeded++
		case r.Status == md2html.StatusCanceled:
			canceled++
		default:
			failed++
		}
	}

	if !p.quiet && len(p.results) > 1 {
		fmt.Fprintf(p.env.Stdout, "\n%d succeeded, %d failed", succeeded, failed)
		if canceled > 0 {
			fmt.Fprintf(p.env.Stdout, ", %d canceled", canceled)
		}
		fmt.Fprintln(p.env.Stdout)
	}
	return p.results
}

func printNotice(w io.Writer, r md2html.Result) {
	hint := ""
	if strings.Contains(r.Notice, "browser") {
		hint = hints.ForBrowserOpen()
	}
	fmt.Fprintf(w, "warning: %s: %s%s\n", r.Job.Output, r.Notice, hint)
}

// hintFor returns the hint matching a failed result.
func hintFor(r md2html.Result) string {
	switch r.Status {
	case md2html.StatusInputReadError:
		return hints.ForInputNotFound(r.Job.Input)
	case md2html.StatusOutputWriteError:
		return hints.ForOutputDirectory(r.Job.Output)
	default:
		return ""
	}
}

// printSession writes the session the way 'md2html list' shows it.
func printSession(w io.Writer, s *md2html.Session, statePath string, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "Session:    %s\n", statePath)
	}
	fmt.Fprintf(w, "CSS:        %s\n", orNone(s.CSSPath))
	fmt.Fprintf(w, "Title:      %s\n", orNone(s.Title))
	fmt.Fprintf(w, "Open after: %s\n", onOff(s.OpenAfterConvert))

	if len(s.Jobs) == 0 {
		fmt.Fprintln(w, "\nNo jobs.")
		return
	}
	fmt.Fprintln(w)
	for i, j := range s.Jobs {
		fmt.Fprintf(w, "%3d  %s  %s -> %s\n", i+1, shortID(j.ID), j.Input, j.Output)
	}
}

// shortID returns the random tail of a job id, enough to select it.
func shortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
