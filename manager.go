package md2html

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2html/internal/browser"
	"github.com/alnah/go-md2html/internal/fileutil"
)

// outputPerm is the mode of written HTML files.
const outputPerm = 0o644

// CSSPolicy decides what happens to a job when the session CSS file
// cannot be read.
type CSSPolicy int

const (
	// CSSReadError marks the job with StatusCSSReadError.
	CSSReadError CSSPolicy = iota

	// CSSLink writes the document with a <link rel="stylesheet"> to the CSS
	// path instead and reports the read failure as a notice.
	CSSLink
)

// Opener shows a written output file to the user. Open must not block.
type Opener interface {
	Open(path string) error
}

// Manager owns a Session, saves it after every change and runs the
// conversion of its jobs. Its methods are safe for concurrent use.
//
// Mutators always apply the change in memory. A non-nil error from a
// mutator only reports that saving failed; it wraps ErrPersistence and the
// session stays usable.
type Manager struct {
	mu        sync.Mutex
	session   *Session
	store     Store
	conv      *Converter
	opener    Opener
	log       *zap.Logger
	workers   int
	cssPolicy CSSPolicy

	// saveBlocked is set when the stored session exists but could not be
	// read; saving would replace it with the empty default.
	saveBlocked error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithWorkers sets how many jobs run in parallel. 1 (the default) runs
// jobs one by one in order; 0 picks a count from GOMAXPROCS.
func WithWorkers(n int) ManagerOption {
	return func(m *Manager) {
		m.workers = n
	}
}

// WithOpener sets the collaborator used when OpenAfterConvert is on.
// Without one, the flag is stored but nothing is opened.
func WithOpener(o Opener) ManagerOption {
	return func(m *Manager) {
		m.opener = o
	}
}

// WithCSSPolicy sets the CSS read failure policy. Defaults to CSSReadError.
func WithCSSPolicy(p CSSPolicy) ManagerOption {
	return func(m *Manager) {
		m.cssPolicy = p
	}
}

// WithConverter sets the Converter. Defaults to NewConverter().
func WithConverter(c *Converter) ManagerOption {
	return func(m *Manager) {
		m.conv = c
	}
}

// NewManager loads the session from store and returns a Manager for it.
// A missing or corrupt stored session yields the empty default session.
// Any other load failure also starts empty, but nothing is saved: every
// mutator then returns an error wrapping ErrPersistence and ErrStateLocked.
func NewManager(store Store, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("md2html: nil store")
	}
	m := &Manager{
		store:   store,
		log:     zap.NewNop(),
		workers: MinWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.conv == nil {
		conv, err := NewConverter()
		if err != nil {
			return nil, err
		}
		m.conv = conv
	}
	m.session, m.saveBlocked = loadSession(store, m.log)
	return m, nil
}

// Session returns a copy of the current session.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// AddJob appends a job. Paths are not checked until the job runs. An empty
// output defaults to the input path with an .html extension.
func (m *Manager) AddJob(input, output string) (Job, error) {
	if input == "" {
		return Job{}, fmt.Errorf("%w: input", ErrEmptyPath)
	}
	output, err := defaultOutput(input, output)
	if err != nil {
		return Job{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.warnNotMarkdown(input)
	job := Job{ID: newJobID(), Input: input, Output: output}
	m.session.Jobs = append(m.session.Jobs, job)
	m.log.Debug("job added", zap.String("id", job.ID), zap.String("input", input), zap.String("output", output))
	return job, m.persistLocked()
}

// EditJob replaces the paths of the job at index, keeping its ID and
// position. It returns false and changes nothing when index is out of
// range.
func (m *Manager) EditJob(index int, input, output string) (bool, error) {
	if input == "" {
		return false, fmt.Errorf("%w: input", ErrEmptyPath)
	}
	output, err := defaultOutput(input, output)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.session.Jobs) {
		return false, nil
	}
	m.warnNotMarkdown(input)
	m.session.Jobs[index].Input = input
	m.session.Jobs[index].Output = output
	return true, m.persistLocked()
}

// RemoveJob removes the job at index. It returns false and changes nothing
// when index is out of range.
func (m *Manager) RemoveJob(index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(index)
}

// RemoveJobByID removes the job with the given ID. It returns false and
// changes nothing when no job has that ID.
func (m *Manager) RemoveJobByID(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(m.session.IndexOf(id))
}

// warnNotMarkdown flags inputs without a .md or .markdown extension. They
// are still accepted; the pipeline converts any text.
func (m *Manager) warnNotMarkdown(input string) {
	if !fileutil.IsMarkdown(input) {
		m.log.Warn("input does not look like a Markdown file", zap.String("input", input))
	}
}

func (m *Manager) removeLocked(index int) (bool, error) {
	if index < 0 || index >= len(m.session.Jobs) {
		return false, nil
	}
	removed := m.session.Jobs[index]
	m.session.Jobs = append(m.session.Jobs[:index:index], m.session.Jobs[index+1:]...)
	m.log.Debug("job removed", zap.String("id", removed.ID))
	return true, m.persistLocked()
}

// SetCSS sets the stylesheet path shared by all jobs; "" clears it.
func (m *Manager) SetCSS(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.CSSPath = path
	return m.persistLocked()
}

// SetTitle sets the title shared by all jobs; "" clears it.
func (m *Manager) SetTitle(title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Title = title
	return m.persistLocked()
}

// SetOpenAfterConvert sets whether successful outputs are opened.
func (m *Manager) SetOpenAfterConvert(open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.OpenAfterConvert = open
	return m.persistLocked()
}

// Persist saves the current session.
func (m *Manager) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistLocked()
}

func (m *Manager) persistLocked() error {
	if m.saveBlocked != nil {
		m.log.Warn("session not saved, the stored one could not be read", zap.Error(m.saveBlocked))
		return fmt.Errorf("%w: %w", ErrPersistence, m.saveBlocked)
	}
	if err := m.store.Save(m.session.Clone()); err != nil {
		m.log.Warn("session not saved", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// RunAll converts every job of the session and returns one result per job,
// in job order. A failing job never stops the others. When ctx is done,
// jobs not yet started are marked StatusCanceled.
func (m *Manager) RunAll(ctx context.Context) []Result {
	r := m.newRun()
	results := make([]Result, len(r.jobs))
	r.execute(ctx, func(p Progress) {
		results[p.Index] = p.Result
	})
	return results
}

// RunAllAsync runs the session in the background and sends each finished
// job on the returned channel, which is closed after the last one. With a
// single worker, progress arrives in job order. The receiver must drain
// the channel.
func (m *Manager) RunAllAsync(ctx context.Context) <-chan Progress {
	r := m.newRun()
	ch := make(chan Progress, len(r.jobs))
	go func() {
		defer close(ch)
		r.execute(ctx, func(p Progress) {
			ch <- p
		})
	}()
	return ch
}

// newRun snapshots the session so later edits do not affect the run.
func (m *Manager) newRun() *run {
	m.mu.Lock()
	snap := m.session.Clone()
	m.mu.Unlock()

	r := &run{
		jobs:      snap.Jobs,
		cssPath:   snap.CSSPath,
		title:     snap.Title,
		conv:      m.conv,
		cssPolicy: m.cssPolicy,
		workers:   ResolveWorkers(m.workers),
		log:       m.log,
	}
	if snap.OpenAfterConvert {
		r.opener = m.opener
	}
	// The CSS file is read at most once per run, by the first job that
	// gets that far.
	r.loadCSS = sync.OnceValues(func() (string, error) {
		data, err := os.ReadFile(r.cssPath) // #nosec G304 -- user-selected stylesheet
		return string(data), err
	})
	return r
}

// run is one execution of the session jobs.
type run struct {
	jobs      []Job
	cssPath   string
	title     string
	conv      *Converter
	opener    Opener
	cssPolicy CSSPolicy
	workers   int
	log       *zap.Logger
	loadCSS   func() (string, error)
}

// execute processes the jobs and calls emit once per job. With more than
// one worker, emit is called from several goroutines.
func (r *run) execute(ctx context.Context, emit func(Progress)) {
	total := len(r.jobs)
	if total == 0 {
		return
	}
	r.log.Debug("run started", zap.Int("jobs", total), zap.Int("workers", min(r.workers, total)))

	do := func(idx int) {
		var res Result
		if err := ctx.Err(); err != nil {
			res = canceled(r.jobs[idx], err)
		} else {
			res = r.runJob(ctx, r.jobs[idx])
		}
		r.logResult(res)
		emit(Progress{Index: idx, Total: total, Result: res})
	}

	if r.workers <= 1 || total == 1 {
		for i := range r.jobs {
			do(i)
		}
		return
	}

	concurrency := min(r.workers, total)
	var wg sync.WaitGroup
	indexes := make(chan int, total)
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				do(idx)
			}
		}()
	}
	for i := range r.jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

// runJob reads, converts and writes one job.
func (r *run) runJob(ctx context.Context, job Job) (res Result) {
	start := time.Now()
	res.Job = job
	defer func() { res.Duration = time.Since(start) }()

	content, err := os.ReadFile(job.Input) // #nosec G304 -- session path
	if err != nil {
		return failed(res, StatusInputReadError, ErrInputRead, err)
	}

	title := r.title
	if title == "" {
		title = filepath.Base(job.Input)
	}
	in := Input{
		Markdown:  string(content),
		Title:     title,
		SourceDir: filepath.Dir(job.Input),
		OutputDir: filepath.Dir(job.Output),
	}

	if r.cssPath != "" {
		css, err := r.loadCSS()
		switch {
		case err == nil:
			in.CSS = css
		case r.cssPolicy == CSSLink:
			in.Stylesheet = stylesheetHref(r.cssPath, job.Output)
			res.Notice = fmt.Sprintf("CSS not embedded (%v), linked instead", err)
		default:
			return failed(res, StatusCSSReadError, ErrCSSRead, err)
		}
	}

	doc, err := r.conv.Convert(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			return canceled(job, ctx.Err())
		}
		return failed(res, StatusConversionError, ErrConversion, err)
	}

	// WriteFile does not create missing parent directories.
	if err := os.WriteFile(job.Output, []byte(doc), outputPerm); err != nil { // #nosec G306 -- HTML output is meant to be world-readable
		return failed(res, StatusOutputWriteError, ErrOutputWrite, err)
	}

	if r.opener != nil {
		if err := r.opener.Open(job.Output); err != nil {
			res.Notice = joinNotice(res.Notice, fmt.Sprintf("could not open browser: %v", err))
		}
	}

	res.Status = StatusSuccess
	return res
}

func (r *run) logResult(res Result) {
	fields := []zap.Field{
		zap.String("input", res.Job.Input),
		zap.String("output", res.Job.Output),
		zap.Stringer("status", res.Status),
		zap.Duration("duration", res.Duration),
	}
	if res.OK() {
		r.log.Debug("job done", fields...)
		return
	}
	r.log.Debug("job failed", append(fields, zap.Error(res.Err))...)
}

// failed fills res for a failed job. The sentinel is kept for errors.Is;
// errors.Is(ErrConversion) still holds when cause already wraps it.
func failed(res Result, status Status, sentinel, cause error) Result {
	res.Status = status
	if errors.Is(cause, sentinel) {
		res.Err = cause
	} else {
		res.Err = fmt.Errorf("%w: %v", sentinel, cause)
	}
	res.Detail = res.Err.Error()
	return res
}

func canceled(job Job, cause error) Result {
	err := fmt.Errorf("%w: %v", ErrCanceled, cause)
	return Result{Job: job, Status: StatusCanceled, Err: err, Detail: err.Error()}
}

func joinNotice(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}

// defaultOutput derives <input>.html when output is empty.
func defaultOutput(input, output string) (string, error) {
	if output != "" {
		return output, nil
	}
	out, err := fileutil.ReplaceExtension(input, "html")
	if err != nil {
		return "", fmt.Errorf("deriving output path: %w", err)
	}
	return out, nil
}

// stylesheetHref points the output document at the CSS file: relative to
// the output directory when possible, as a file:// URL otherwise.
func stylesheetHref(cssPath, outputPath string) string {
	absCSS, err := filepath.Abs(cssPath)
	if err != nil {
		return (&url.URL{Path: filepath.ToSlash(cssPath)}).EscapedPath()
	}
	absOut, err := filepath.Abs(filepath.Dir(outputPath))
	if err != nil {
		return browser.FileURL(absCSS)
	}
	rel, err := filepath.Rel(absOut, absCSS)
	if err != nil {
		return browser.FileURL(absCSS)
	}
	return (&url.URL{Path: filepath.ToSlash(rel)}).EscapedPath()
}
