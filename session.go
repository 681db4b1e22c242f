package md2html

import (
	"slices"

	"github.com/google/uuid"
)

// Job maps one Markdown input file to one HTML output file.
type Job struct {
	ID     string `yaml:"id"`     // Stable across path edits
	Input  string `yaml:"input"`  // Markdown source path
	Output string `yaml:"output"` // HTML destination path
}

// Session is the persisted working set: the ordered jobs and the settings
// shared by all of them.
type Session struct {
	Jobs             []Job
	CSSPath          string // Empty = no stylesheet
	Title            string // Empty = no title override
	OpenAfterConvert bool
}

// NewSession returns the empty default session.
func NewSession() *Session {
	return &Session{}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return NewSession()
	}
	c := *s
	c.Jobs = slices.Clone(s.Jobs)
	return &c
}

// Equal reports whether two sessions hold the same jobs and settings.
// A nil job list equals an empty one.
func (s *Session) Equal(o *Session) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.CSSPath == o.CSSPath &&
		s.Title == o.Title &&
		s.OpenAfterConvert == o.OpenAfterConvert &&
		slices.Equal(s.Jobs, o.Jobs)
}

// IndexOf returns the position of the job with the given ID, or -1.
func (s *Session) IndexOf(id string) int {
	return slices.IndexFunc(s.Jobs, func(j Job) bool { return j.ID == id })
}

// newJobID returns a time-ordered UUID, or a random one if the clock
// source fails.
func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
