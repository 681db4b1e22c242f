package md2html

import (
	"fmt"
	"time"
)

// Input contains the per-conversion data for Converter.Convert.
type Input struct {
	Markdown   string // Markdown source text
	CSS        string // Inserted verbatim into a <style> block; empty = none
	Stylesheet string // Optional href of a linked stylesheet
	Title      string // Empty = DefaultTitle
	SourceDir  string // Directory of the Markdown file, for relative links
	OutputDir  string // Directory of the HTML file, for relative links
}

// Status is the outcome of one job in a run.
type Status int

// Job outcomes. The zero value is StatusSuccess.
const (
	StatusSuccess Status = iota
	StatusInputReadError
	StatusCSSReadError
	StatusConversionError
	StatusOutputWriteError
	StatusCanceled
)

var statusNames = [...]string{
	StatusSuccess:          "success",
	StatusInputReadError:   "input-read-error",
	StatusCSSReadError:     "css-read-error",
	StatusConversionError:  "conversion-error",
	StatusOutputWriteError: "output-write-error",
	StatusCanceled:         "canceled",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Result is the outcome of one job.
type Result struct {
	Job      Job
	Status   Status
	Detail   string        // Human-readable message, empty on success
	Err      error         // Wraps one of the per-job sentinel errors
	Duration time.Duration // Time spent on the job
	Notice   string        // Non-fatal message, e.g. a failed browser launch
}

// OK reports whether the job succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Progress reports one finished job of an asynchronous run.
type Progress struct {
	Index  int // Position of the job in the session
	Total  int // Number of jobs in the run
	Result Result
}
