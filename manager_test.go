package md2html

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
	onOpen func()
}

func (f *fakeOpener) Open(path string) error {
	f.mu.Lock()
	f.opened = append(f.opened, path)
	f.mu.Unlock()
	if f.onOpen != nil {
		f.onOpen()
	}
	return f.err
}

func (f *fakeOpener) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func newTestManager(t *testing.T, store Store, opts ...ManagerOption) *Manager {
	t.Helper()
	if store == nil {
		store = &memStore{}
	}
	m, err := NewManager(store, opts...)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func mustAdd(t *testing.T, m *Manager, input, output string) Job {
	t.Helper()
	job, err := m.AddJob(input, output)
	if err != nil {
		t.Fatalf("AddJob(%q, %q) error = %v", input, output, err)
	}
	return job
}

func statuses(results []Result) []Status {
	out := make([]Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewManager(t *testing.T) {
	t.Parallel()

	t.Run("restores stored session", func(t *testing.T) {
		t.Parallel()

		stored := &Session{Jobs: []Job{{ID: "1", Input: "a.md", Output: "a.html"}}, Title: "Doc"}
		m := newTestManager(t, &memStore{session: stored})
		if !m.Session().Equal(stored) {
			t.Errorf("Session() = %+v, want %+v", m.Session(), stored)
		}
	})

	t.Run("corrupt state starts empty", func(t *testing.T) {
		t.Parallel()

		m := newTestManager(t, &memStore{loadErr: ErrStateCorrupt})
		if !m.Session().Equal(NewSession()) {
			t.Errorf("Session() = %+v, want empty", m.Session())
		}
	})

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()

		if _, err := NewManager(nil); err == nil {
			t.Error("NewManager(nil) should fail")
		}
	})
}

// ---------------------------------------------------------------------------
// Mutators
// ---------------------------------------------------------------------------

func TestManager_AddJob(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	m := newTestManager(t, store)

	a := mustAdd(t, m, "a.md", "out/a.html")
	b := mustAdd(t, m, "docs/b.markdown", "")
	dup := mustAdd(t, m, "a.md", "out/a.html")

	if a.ID == "" || a.ID == b.ID || a.ID == dup.ID {
		t.Errorf("job IDs should be set and unique: %q %q %q", a.ID, b.ID, dup.ID)
	}
	if b.Output != "docs/b.html" {
		t.Errorf("derived output = %q, want docs/b.html", b.Output)
	}

	s := m.Session()
	if len(s.Jobs) != 3 || s.Jobs[0] != a || s.Jobs[1] != b || s.Jobs[2] != dup {
		t.Errorf("jobs = %+v, want insertion order", s.Jobs)
	}
	if store.saves != 3 || !store.session.Equal(s) {
		t.Errorf("saves = %d, stored = %+v; want every add persisted", store.saves, store.session)
	}

	if _, err := m.AddJob("", "x.html"); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("AddJob(\"\") error = %v, want ErrEmptyPath", err)
	}
	if len(m.Session().Jobs) != 3 || store.saves != 3 {
		t.Error("rejected AddJob changed the session")
	}
}

func TestManager_EditJob(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	m := newTestManager(t, store)
	first := mustAdd(t, m, "a.md", "a.html")
	second := mustAdd(t, m, "b.md", "b.html")

	ok, err := m.EditJob(0, "renamed.md", "")
	if err != nil || !ok {
		t.Fatalf("EditJob() = %v, %v", ok, err)
	}
	s := m.Session()
	want := Job{ID: first.ID, Input: "renamed.md", Output: "renamed.html"}
	if s.Jobs[0] != want {
		t.Errorf("edited job = %+v, want %+v", s.Jobs[0], want)
	}
	if s.Jobs[1] != second {
		t.Errorf("other job changed: %+v", s.Jobs[1])
	}

	saves := store.saves
	for _, idx := range []int{-1, 2, 100} {
		ok, err := m.EditJob(idx, "x.md", "x.html")
		if ok || err != nil {
			t.Errorf("EditJob(%d) = %v, %v; want false, nil", idx, ok, err)
		}
	}
	if store.saves != saves || !m.Session().Equal(s) {
		t.Error("out-of-range edit changed or saved the session")
	}
}

func TestManager_RemoveJob(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	m := newTestManager(t, store)
	a := mustAdd(t, m, "a.md", "a.html")
	b := mustAdd(t, m, "b.md", "b.html")
	c := mustAdd(t, m, "c.md", "c.html")

	before := m.Session()
	saves := store.saves
	for _, idx := range []int{-1, 3, 42} {
		ok, err := m.RemoveJob(idx)
		if ok || err != nil {
			t.Errorf("RemoveJob(%d) = %v, %v; want false, nil", idx, ok, err)
		}
	}
	if ok, _ := m.RemoveJobByID("no-such-id"); ok {
		t.Error("RemoveJobByID(unknown) = true")
	}
	if !m.Session().Equal(before) || store.saves != saves {
		t.Fatal("failed removals changed or saved the session")
	}

	if ok, err := m.RemoveJob(1); !ok || err != nil {
		t.Fatalf("RemoveJob(1) = %v, %v", ok, err)
	}
	if ok, err := m.RemoveJobByID(c.ID); !ok || err != nil {
		t.Fatalf("RemoveJobByID() = %v, %v", ok, err)
	}

	got := m.Session().Jobs
	if len(got) != 1 || got[0] != a {
		t.Errorf("jobs = %+v, want only %+v", got, a)
	}
	if before.Jobs[1] != b {
		t.Error("earlier snapshot was modified by RemoveJob")
	}
	if !store.session.Equal(m.Session()) {
		t.Error("removal not persisted")
	}
}

func TestManager_Setters(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	m := newTestManager(t, store)

	if err := m.SetCSS("site.css"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTitle("Handbook"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetOpenAfterConvert(true); err != nil {
		t.Fatal(err)
	}

	want := &Session{CSSPath: "site.css", Title: "Handbook", OpenAfterConvert: true}
	if !m.Session().Equal(want) || !store.session.Equal(want) {
		t.Errorf("session = %+v, stored = %+v, want %+v", m.Session(), store.session, want)
	}

	if err := m.SetCSS(""); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTitle(""); err != nil {
		t.Fatal(err)
	}
	if s := m.Session(); s.CSSPath != "" || s.Title != "" {
		t.Errorf("clearing failed: %+v", s)
	}
}

func TestManager_SaveFailureKeepsChange(t *testing.T) {
	t.Parallel()

	store := &memStore{saveErr: errors.New("disk full")}
	m := newTestManager(t, store)

	job, err := m.AddJob("a.md", "a.html")
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("AddJob() error = %v, want ErrPersistence", err)
	}
	if job.ID == "" {
		t.Error("job should be returned even when saving fails")
	}
	if err := m.SetTitle("T"); !errors.Is(err, ErrPersistence) {
		t.Errorf("SetTitle() error = %v, want ErrPersistence", err)
	}
	if ok, err := m.RemoveJob(0); !ok || !errors.Is(err, ErrPersistence) {
		t.Errorf("RemoveJob() = %v, %v", ok, err)
	}
	if err := m.Persist(); !errors.Is(err, ErrPersistence) {
		t.Errorf("Persist() error = %v, want ErrPersistence", err)
	}

	s := m.Session()
	if s.Title != "T" || len(s.Jobs) != 0 {
		t.Errorf("in-memory session = %+v, want changes applied", s)
	}
}

func TestManager_UnreadableStoreIsNeverOverwritten(t *testing.T) {
	t.Parallel()

	store := &memStore{loadErr: errors.New("permission denied")}
	m := newTestManager(t, store)

	job, err := m.AddJob("a.md", "")
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, ErrStateLocked) {
		t.Errorf("AddJob() error = %v, want ErrPersistence and ErrStateLocked", err)
	}
	if err := m.SetTitle("T"); !errors.Is(err, ErrStateLocked) {
		t.Errorf("SetTitle() error = %v, want ErrStateLocked", err)
	}
	if err := m.Persist(); !errors.Is(err, ErrStateLocked) {
		t.Errorf("Persist() error = %v, want ErrStateLocked", err)
	}
	if store.saves != 0 {
		t.Errorf("store saved %d times, want 0", store.saves)
	}

	s := m.Session()
	if len(s.Jobs) != 1 || s.Jobs[0].ID != job.ID || s.Title != "T" {
		t.Errorf("in-memory session = %+v, want changes applied", s)
	}
}

func TestManager_CorruptStoreIsReplaced(t *testing.T) {
	t.Parallel()

	store := &memStore{loadErr: ErrStateCorrupt}
	m := newTestManager(t, store)
	if err := m.SetTitle("fresh"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	if store.saves != 1 || store.session.Title != "fresh" {
		t.Errorf("saves = %d, stored = %+v", store.saves, store.session)
	}
}

func TestManager_WarnsOnNonMarkdownInput(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	m := newTestManager(t, nil, WithLogger(zap.New(core)))

	mustAdd(t, m, "notes.md", "")
	mustAdd(t, m, "README.markdown", "")
	if n := logs.Len(); n != 0 {
		t.Fatalf("got %d warnings for Markdown inputs", n)
	}

	job := mustAdd(t, m, "notes.txt", "")
	if job.Output != "notes.html" {
		t.Errorf("Output = %q, the job must still be added", job.Output)
	}
	if _, err := m.EditJob(0, "draft.rst", ""); err != nil {
		t.Fatal(err)
	}
	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d warnings, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["input"]; got != "notes.txt" {
		t.Errorf("warned about %v, want notes.txt", got)
	}
}

func TestManager_SessionIsSnapshot(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, nil)
	mustAdd(t, m, "a.md", "a.html")

	snap := m.Session()
	snap.Jobs[0].Input = "tampered.md"
	snap.Title = "tampered"

	if s := m.Session(); s.Jobs[0].Input != "a.md" || s.Title != "" {
		t.Errorf("manager state changed through snapshot: %+v", s)
	}
}

func TestManager_PersistsAcrossRestarts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg", "session.yaml")

	m := newTestManager(t, NewFileStore(path))
	a := mustAdd(t, m, "a.md", "a.html")
	mustAdd(t, m, "b.md", "b.html")
	if _, err := m.RemoveJob(1); err != nil {
		t.Fatal(err)
	}
	if err := m.SetCSS("style.css"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetOpenAfterConvert(true); err != nil {
		t.Fatal(err)
	}

	restarted := newTestManager(t, NewFileStore(path))
	want := &Session{Jobs: []Job{a}, CSSPath: "style.css", OpenAfterConvert: true}
	if !restarted.Session().Equal(want) {
		t.Errorf("restored %+v, want %+v", restarted.Session(), want)
	}
}

// ---------------------------------------------------------------------------
// RunAll
// ---------------------------------------------------------------------------

func TestRunAll_TwoDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	aIn := writeFile(t, filepath.Join(dir, "a.md"), "# Alpha\n\nfirst")
	bIn := writeFile(t, filepath.Join(dir, "b.md"), "# Beta\n\nsecond")
	aOut := filepath.Join(dir, "a.html")
	bOut := filepath.Join(dir, "b.html")

	m := newTestManager(t, nil)
	mustAdd(t, m, aIn, aOut)
	mustAdd(t, m, bIn, bOut)
	if err := m.SetTitle("Doc"); err != nil {
		t.Fatal(err)
	}

	results := m.RunAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Status != StatusSuccess || r.Err != nil || r.Detail != "" {
			t.Errorf("result %d = %+v, want success", i, r)
		}
	}

	a, b := readFile(t, aOut), readFile(t, bOut)
	for name, tc := range map[string]struct{ doc, body string }{
		"a": {a, "Alpha</h1>"},
		"b": {b, "Beta</h1>"},
	} {
		if !strings.Contains(tc.doc, "<title>Doc</title>") {
			t.Errorf("%s.html missing title", name)
		}
		if !strings.Contains(tc.doc, tc.body) {
			t.Errorf("%s.html missing body %q", name, tc.body)
		}
	}
	if strings.Contains(a, "Beta") {
		t.Error("a.html contains b.md content")
	}
}

func TestRunAll_NoAbortOnPartialFailure(t *testing.T) {
	t.Parallel()

	const n = 5
	for k := range n {
		t.Run(fmt.Sprintf("failing job %d", k), func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			m := newTestManager(t, nil)
			for i := range n {
				in := filepath.Join(dir, fmt.Sprintf("%d.md", i))
				if i != k {
					writeFile(t, in, fmt.Sprintf("# Doc %d", i))
				}
				mustAdd(t, m, in, filepath.Join(dir, fmt.Sprintf("%d.html", i)))
			}

			results := m.RunAll(context.Background())
			jobs := m.Session().Jobs
			if len(results) != n {
				t.Fatalf("got %d results, want %d", len(results), n)
			}
			for i, r := range results {
				if r.Job != jobs[i] {
					t.Errorf("result %d is for %+v, want %+v", i, r.Job, jobs[i])
				}
				want := StatusSuccess
				if i == k {
					want = StatusInputReadError
				}
				if r.Status != want {
					t.Errorf("result %d status = %v, want %v", i, r.Status, want)
				}
			}
			if !errors.Is(results[k].Err, ErrInputRead) || results[k].Detail == "" {
				t.Errorf("failed result = %+v, want ErrInputRead with detail", results[k])
			}
		})
	}
}

func TestRunAll_EmptySession(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, nil)
	if got := m.RunAll(context.Background()); len(got) != 0 {
		t.Errorf("RunAll() = %v, want no results", got)
	}
}

func TestRunAll_CSS(t *testing.T) {
	t.Parallel()

	t.Run("embedded verbatim", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		css := "body { color: #333; }\n/* </style> stays */"
		cssPath := writeFile(t, filepath.Join(dir, "site.css"), css)
		in := writeFile(t, filepath.Join(dir, "a.md"), "text")
		out := filepath.Join(dir, "a.html")

		m := newTestManager(t, nil)
		mustAdd(t, m, in, out)
		if err := m.SetCSS(cssPath); err != nil {
			t.Fatal(err)
		}

		if r := m.RunAll(context.Background()); r[0].Status != StatusSuccess {
			t.Fatalf("result = %+v", r[0])
		}
		if doc := readFile(t, out); !strings.Contains(doc, "<style>\n"+css+"\n</style>") {
			t.Errorf("CSS not embedded verbatim:\n%s", doc)
		}
	})

	t.Run("missing css fails every readable job", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := newTestManager(t, nil)
		mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), filepath.Join(dir, "a.html"))
		mustAdd(t, m, filepath.Join(dir, "missing.md"), filepath.Join(dir, "missing.html"))
		mustAdd(t, m, writeFile(t, filepath.Join(dir, "c.md"), "c"), filepath.Join(dir, "c.html"))
		if err := m.SetCSS(filepath.Join(dir, "absent.css")); err != nil {
			t.Fatal(err)
		}

		results := m.RunAll(context.Background())
		want := []Status{StatusCSSReadError, StatusInputReadError, StatusCSSReadError}
		if got := statuses(results); fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("statuses = %v, want %v", got, want)
		}
		if !errors.Is(results[0].Err, ErrCSSRead) {
			t.Errorf("error = %v, want ErrCSSRead", results[0].Err)
		}
		if _, err := os.Stat(filepath.Join(dir, "a.html")); !os.IsNotExist(err) {
			t.Error("output written despite CSS failure")
		}
	})

	t.Run("link policy", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "out"), 0o750); err != nil {
			t.Fatal(err)
		}
		out := filepath.Join(dir, "out", "a.html")

		m := newTestManager(t, nil, WithCSSPolicy(CSSLink))
		mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), out)
		if err := m.SetCSS(filepath.Join(dir, "css", "theme.css")); err != nil {
			t.Fatal(err)
		}

		r := m.RunAll(context.Background())[0]
		if r.Status != StatusSuccess || r.Notice == "" {
			t.Errorf("result = %+v, want success with notice", r)
		}
		doc := readFile(t, out)
		if !strings.Contains(doc, `<link rel="stylesheet" href="../css/theme.css">`) {
			t.Errorf("missing stylesheet link:\n%s", doc)
		}
		if strings.Contains(doc, "<style>") {
			t.Error("unexpected <style> block")
		}
	})
}

func TestRunAll_TitleDefaultsToInputName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "notes.html")
	m := newTestManager(t, nil)
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "notes.md"), "# x"), out)

	m.RunAll(context.Background())
	if doc := readFile(t, out); !strings.Contains(doc, "<title>notes.md</title>") {
		t.Errorf("title should default to input file name:\n%s", doc)
	}
}

func TestRunAll_OutputWriteError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missingDir := filepath.Join(dir, "no", "such", "dir")
	m := newTestManager(t, nil)
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), filepath.Join(missingDir, "a.html"))
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "b.md"), "b"), filepath.Join(dir, "b.html"))

	results := m.RunAll(context.Background())
	if results[0].Status != StatusOutputWriteError || !errors.Is(results[0].Err, ErrOutputWrite) {
		t.Errorf("result 0 = %+v, want output write error", results[0])
	}
	if results[1].Status != StatusSuccess {
		t.Errorf("result 1 = %+v, want success", results[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "no")); !os.IsNotExist(err) {
		t.Error("parent directories must not be created")
	}
}

func TestRunAll_OverwritesOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := writeFile(t, filepath.Join(dir, "a.html"), "stale content that is longer than the new document will ever be "+strings.Repeat("x", 4096))
	m := newTestManager(t, nil)
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "fresh"), out)

	m.RunAll(context.Background())
	doc := readFile(t, out)
	if strings.Contains(doc, "stale") || !strings.Contains(doc, "fresh") {
		t.Errorf("output not overwritten:\n%s", doc)
	}
}

func TestRunAll_DuplicateOutputLastWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "same.html")
	m := newTestManager(t, nil)
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "first.md"), "first body"), out)
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "second.md"), "second body"), out)

	m.RunAll(context.Background())
	if doc := readFile(t, out); !strings.Contains(doc, "second body") {
		t.Errorf("later job should win:\n%s", doc)
	}
}

func TestRunAll_ConversionError(t *testing.T) {
	t.Parallel()

	conv, err := NewConverter(withHTMLConverter(&mockHTMLConverter{err: errors.New("renderer broke")}))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	m := newTestManager(t, nil, WithConverter(conv))
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), filepath.Join(dir, "a.html"))

	r := m.RunAll(context.Background())[0]
	if r.Status != StatusConversionError || !errors.Is(r.Err, ErrConversion) {
		t.Errorf("result = %+v, want conversion error", r)
	}
}

func TestRunAll_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("canceled before start", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := newTestManager(t, nil)
		mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), filepath.Join(dir, "a.html"))
		mustAdd(t, m, writeFile(t, filepath.Join(dir, "b.md"), "b"), filepath.Join(dir, "b.html"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for i, r := range m.RunAll(ctx) {
			if r.Status != StatusCanceled || !errors.Is(r.Err, ErrCanceled) {
				t.Errorf("result %d = %+v, want canceled", i, r)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "a.html")); !os.IsNotExist(err) {
			t.Error("canceled job wrote output")
		}
	})

	t.Run("canceled between jobs", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		opener := &fakeOpener{onOpen: cancel}

		dir := t.TempDir()
		m := newTestManager(t, nil, WithOpener(opener))
		for _, name := range []string{"a", "b", "c"} {
			mustAdd(t, m, writeFile(t, filepath.Join(dir, name+".md"), name), filepath.Join(dir, name+".html"))
		}
		if err := m.SetOpenAfterConvert(true); err != nil {
			t.Fatal(err)
		}

		got := statuses(m.RunAll(ctx))
		want := []Status{StatusSuccess, StatusCanceled, StatusCanceled}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("statuses = %v, want %v", got, want)
		}
	})
}

func TestRunAll_OpenAfterConvert(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, opener *fakeOpener, open bool) (*Manager, string) {
		t.Helper()
		dir := t.TempDir()
		m := newTestManager(t, nil, WithOpener(opener))
		out := filepath.Join(dir, "a.html")
		mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), out)
		mustAdd(t, m, filepath.Join(dir, "missing.md"), filepath.Join(dir, "missing.html"))
		if err := m.SetOpenAfterConvert(open); err != nil {
			t.Fatal(err)
		}
		return m, out
	}

	t.Run("opens successful outputs only", func(t *testing.T) {
		t.Parallel()

		opener := &fakeOpener{}
		m, out := setup(t, opener, true)
		m.RunAll(context.Background())
		if got := opener.calls(); len(got) != 1 || got[0] != out {
			t.Errorf("opened = %v, want [%s]", got, out)
		}
	})

	t.Run("flag off", func(t *testing.T) {
		t.Parallel()

		opener := &fakeOpener{}
		m, _ := setup(t, opener, false)
		m.RunAll(context.Background())
		if got := opener.calls(); len(got) != 0 {
			t.Errorf("opened = %v, want nothing", got)
		}
	})

	t.Run("launch failure is a notice", func(t *testing.T) {
		t.Parallel()

		opener := &fakeOpener{err: errors.New("no display")}
		m, _ := setup(t, opener, true)
		r := m.RunAll(context.Background())[0]
		if r.Status != StatusSuccess {
			t.Errorf("status = %v, want success", r.Status)
		}
		if !strings.Contains(r.Notice, "no display") {
			t.Errorf("notice = %q, want launch error", r.Notice)
		}
	})
}

// ---------------------------------------------------------------------------
// Async and parallel runs
// ---------------------------------------------------------------------------

func TestRunAllAsync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newTestManager(t, nil)
	for i := range 4 {
		in := filepath.Join(dir, fmt.Sprintf("%d.md", i))
		if i != 2 {
			writeFile(t, in, "x")
		}
		mustAdd(t, m, in, filepath.Join(dir, fmt.Sprintf("%d.html", i)))
	}

	var got []Progress
	for p := range m.RunAllAsync(context.Background()) {
		got = append(got, p)
	}

	if len(got) != 4 {
		t.Fatalf("got %d progress messages, want 4", len(got))
	}
	for i, p := range got {
		if p.Index != i || p.Total != 4 {
			t.Errorf("progress %d = index %d total %d", i, p.Index, p.Total)
		}
	}
	if got[2].Result.Status != StatusInputReadError {
		t.Errorf("job 2 status = %v, want input read error", got[2].Result.Status)
	}
}

func TestRunAllAsync_EmptySessionCloses(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, nil)
	for p := range m.RunAllAsync(context.Background()) {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestRunAll_ParallelKeepsOrder(t *testing.T) {
	t.Parallel()

	const n = 20
	dir := t.TempDir()
	m := newTestManager(t, nil, WithWorkers(4))
	for i := range n {
		in := filepath.Join(dir, fmt.Sprintf("%02d.md", i))
		if i%7 != 3 {
			writeFile(t, in, fmt.Sprintf("# Doc %d", i))
		}
		mustAdd(t, m, in, filepath.Join(dir, fmt.Sprintf("%02d.html", i)))
	}

	results := m.RunAll(context.Background())
	jobs := m.Session().Jobs
	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	for i, r := range results {
		if r.Job != jobs[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.Job.Input, jobs[i].Input)
		}
		want := StatusSuccess
		if i%7 == 3 {
			want = StatusInputReadError
		}
		if r.Status != want {
			t.Errorf("result %d status = %v, want %v", i, r.Status, want)
		}
	}
}

func TestRunAll_UsesSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "a.html")

	var m *Manager
	opener := &fakeOpener{}
	opener.onOpen = func() {
		// Mutating during a run must not deadlock or affect it.
		if _, err := m.AddJob("late.md", ""); err != nil {
			t.Errorf("AddJob during run: %v", err)
		}
	}
	m = newTestManager(t, nil, WithOpener(opener))
	mustAdd(t, m, writeFile(t, filepath.Join(dir, "a.md"), "a"), out)
	if err := m.SetOpenAfterConvert(true); err != nil {
		t.Fatal(err)
	}

	if results := m.RunAll(context.Background()); len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
	if len(m.Session().Jobs) != 2 {
		t.Error("job added during the run was lost")
	}
}

func TestStylesheetHref(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tests := []struct {
		css, out, want string
	}{
		{filepath.Join(root, "site.css"), filepath.Join(root, "a.html"), "site.css"},
		{filepath.Join(root, "css", "my theme.css"), filepath.Join(root, "out", "a.html"), "../css/my%20theme.css"},
	}
	for _, tt := range tests {
		if got := stylesheetHref(tt.css, tt.out); got != tt.want {
			t.Errorf("stylesheetHref(%q, %q) = %q, want %q", tt.css, tt.out, got, tt.want)
		}
	}
}
