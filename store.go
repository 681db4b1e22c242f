package md2html

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/alnah/go-md2html/internal/fileutil"
	"github.com/alnah/go-md2html/internal/yamlutil"
)

// stateVersion is written to every session file; other versions are
// rejected as corrupt.
const stateVersion = 1

// Session file permissions.
const (
	stateFilePerm = 0o600
	stateDirPerm  = 0o750
)

// Store loads and saves a Session.
type Store interface {
	Load() (*Session, error)
	Save(s *Session) error
}

// FileStore keeps the session in a YAML file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore for path. The file and its directory
// are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file location.
func (f *FileStore) Path() string {
	return f.path
}

// stateFile is the on-disk layout.
type stateFile struct {
	Version          int    `yaml:"version"`
	Jobs             []Job  `yaml:"jobs"`
	CSSPath          string `yaml:"css"`
	Title            string `yaml:"title"`
	OpenAfterConvert bool   `yaml:"openAfterConvert"`
}

// Load reads the session file. It returns ErrStateNotFound when the file
// does not exist and ErrStateCorrupt when it cannot be decoded. Jobs
// without an id get a new one.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path) // #nosec G304 -- state path is user-configured
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStateNotFound, f.path)
		}
		return nil, fmt.Errorf("reading session %s: %w", f.path, err)
	}

	var st stateFile
	if err := yamlutil.UnmarshalStrict(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	if st.Version != stateVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrStateCorrupt, st.Version)
	}
	// Jobs added by hand may omit the id.
	for i := range st.Jobs {
		if st.Jobs[i].ID == "" {
			st.Jobs[i].ID = newJobID()
		}
	}

	return st.session(), nil
}

func (st *stateFile) session() *Session {
	return &Session{
		Jobs:             st.Jobs,
		CSSPath:          st.CSSPath,
		Title:            st.Title,
		OpenAfterConvert: st.OpenAfterConvert,
	}
}

// Save writes the session atomically. Every job must have an id.
func (f *FileStore) Save(s *Session) error {
	if s == nil {
		s = NewSession()
	}
	for i, j := range s.Jobs {
		if j.ID == "" {
			return fmt.Errorf("%w: job %d", ErrMissingJobID, i+1)
		}
	}
	data, err := encodeState(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := fileutil.WriteFileAtomic(f.path, data, stateFilePerm, stateDirPerm); err != nil {
		return fmt.Errorf("writing session %s: %w", f.path, err)
	}
	return nil
}

// encodeState writes s in plain YAML when that decodes back to s, and
// with every string double-quoted otherwise (tabs, line breaks, edge
// whitespace).
func encodeState(s *Session) ([]byte, error) {
	st := stateFile{
		Version:          stateVersion,
		Jobs:             s.Jobs,
		CSSPath:          s.CSSPath,
		Title:            s.Title,
		OpenAfterConvert: s.OpenAfterConvert,
	}
	for _, marshal := range []func(any) ([]byte, error){yamlutil.Marshal, yamlutil.MarshalQuoted} {
		data, err := marshal(st)
		if err != nil {
			return nil, err
		}
		var back stateFile
		if err := yamlutil.UnmarshalStrict(data, &back); err == nil && back.session().Equal(s) {
			return data, nil
		}
	}
	return nil, errors.New("session holds strings YAML cannot store exactly")
}

// Load returns the stored session, or the empty default session when the
// store has none or its content is unusable. Failures are logged, never
// returned.
func Load(store Store, log *zap.Logger) *Session {
	s, _ := loadSession(store, log)
	return s
}

// loadSession is Load for the Manager. The error is non-nil, and wraps
// ErrStateLocked, when a stored session may exist but could not be read;
// it must not be overwritten then.
func loadSession(store Store, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := store.Load()
	switch {
	case err == nil:
		if s == nil {
			return NewSession(), nil
		}
		log.Debug("session loaded", zap.Int("jobs", len(s.Jobs)))
		return s, nil
	case errors.Is(err, ErrStateNotFound):
		log.Debug("no saved session, starting empty")
		return NewSession(), nil
	case errors.Is(err, ErrStateCorrupt):
		log.Warn("saved session is corrupt, starting empty", zap.Error(err))
		return NewSession(), nil
	default:
		log.Warn("cannot read saved session, starting empty and not saving", zap.Error(err))
		return NewSession(), fmt.Errorf("%w: %v", ErrStateLocked, err)
	}
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)
