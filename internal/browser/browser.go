// Package browser opens generated HTML files in the system browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// Sentinel errors for browser operations.
var (
	ErrNotFound   = errors.New("file to open not found")
	ErrNotRegular = errors.New("file to open is not a regular file")
)

// Opener hands files to the system browser without waiting for it.
type Opener struct {
	launch func(url string)
	log    *zap.Logger
}

// Option configures an Opener.
type Option func(*Opener)

// WithLauncher replaces the function receiving the file:// URL.
func WithLauncher(fn func(url string)) Option {
	return func(o *Opener) {
		if fn != nil {
			o.launch = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Opener) {
		if log != nil {
			o.log = log
		}
	}
}

// New returns an Opener using the platform default browser.
func New(opts ...Option) *Opener {
	o := &Opener{
		launch: launcher.Open,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open checks path and launches the browser in the background.
// Only the checks can fail; the launch itself is not observed.
func (o *Opener) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return fmt.Errorf("checking %s: %w", abs, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegular, abs)
	}

	target := FileURL(abs)
	o.log.Debug("opening browser", zap.String("url", target))

	launch := o.launch
	log := o.log
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("browser launch failed", zap.String("url", target), zap.Any("panic", r))
			}
		}()
		launch(target)
	}()
	return nil
}

// FileURL converts an absolute filesystem path to a file:// URL.
func FileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if len(p) > 0 && p[0] != '/' {
		// Windows drive letter: C:/dir -> /C:/dir
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
