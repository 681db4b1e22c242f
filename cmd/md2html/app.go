package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/assets"
	"github.com/alnah/go-md2html/internal/browser"
	"github.com/alnah/go-md2html/internal/config"
	"github.com/alnah/go-md2html/internal/hints"
	"github.com/alnah/go-md2html/internal/logging"
)

// app is the resolved configuration of one command invocation.
type app struct {
	env      *Environment
	flags    *commonFlags
	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
}

// newApp loads the config and applies env vars and flags over it.
func newApp(f *commonFlags, env *Environment) (*app, error) {
	envCfg := loadEnvConfig(env.Getenv)

	cfg := config.DefaultConfig()
	if name := firstNonEmpty(f.config, envCfg.ConfigPath); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			var nf *config.NotFoundError
			if errors.As(err, &nf) {
				return nil, withHint(fmt.Errorf("loading config: %w", err), hints.ForConfigNotFound(nf.Tried))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	switch {
	case f.quiet:
		level = logging.LevelNone
	case f.verbose:
		level = logging.LevelDebug
	}
	log, closeLog, err := logging.New(logging.Options{
		ConsoleLevel: level,
		Console:      env.Stderr,
		FileLevel:    cfg.Logging.File.Level,
		FilePath:     cfg.Logging.File.Path,
		FileMode:     cfg.Logging.File.Mode,
	})
	if err != nil {
		return nil, err
	}

	if env.Environ != nil {
		warnUnknownEnvVars(env.Environ(), log)
	}

	return &app{env: env, flags: f, cfg: cfg, log: log, closeLog: closeLog}, nil
}

func (a *app) close() {
	a.closeLog()
}

// statePath returns the session file in use.
func (a *app) statePath() string {
	return a.cfg.StatePath()
}

// converter builds the Converter from the css, assets and highlight settings.
func (a *app) converter() (*md2html.Converter, error) {
	conv, err := md2html.NewConverter(
		md2html.WithStyle(a.cfg.CSS.Style),
		md2html.WithAssetPath(a.cfg.Assets.BasePath),
		md2html.WithHighlightStyle(a.cfg.Highlight.Style),
	)
	if err != nil {
		if errors.Is(err, md2html.ErrStyleNotFound) {
			return nil, withHint(err, hints.ForStyleNotFound(a.availableStyles()))
		}
		return nil, err
	}
	return conv, nil
}

func (a *app) availableStyles() []string {
	r, err := assets.NewResolver(a.cfg.Assets.BasePath)
	if err != nil {
		r, _ = assets.NewResolver("")
	}
	return r.Styles()
}

// opener returns the injected opener or the system browser.
func (a *app) opener() md2html.Opener {
	if a.env.Opener != nil {
		return a.env.Opener
	}
	return browser.New(browser.WithLogger(a.log))
}

// cssPolicy maps css.onError to the manager policy.
func (a *app) cssPolicy() md2html.CSSPolicy {
	if a.cfg.CSS.OnError == config.CSSOnErrorLink {
		return md2html.CSSLink
	}
	return md2html.CSSReadError
}

// manager opens the session. Converter-related options are added only when
// the command converts, so that editing a session never fails on a bad
// style setting.
func (a *app) manager(store md2html.Store, converting bool) (*md2html.Manager, error) {
	opts := []md2html.ManagerOption{md2html.WithLogger(a.log)}
	if converting {
		conv, err := a.converter()
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			md2html.WithConverter(conv),
			md2html.WithWorkers(a.cfg.Workers),
			md2html.WithOpener(a.opener()),
			md2html.WithCSSPolicy(a.cssPolicy()),
		)
	}
	return md2html.NewManager(store, opts...)
}

// sessionManager opens the persisted session.
func (a *app) sessionManager(converting bool) (*md2html.Manager, error) {
	return a.manager(md2html.NewFileStore(a.statePath()), converting)
}

// savedOrHint adds the state file hint to persistence errors.
func (a *app) savedOrHint(err error) error {
	if err == nil {
		return nil
	}
	return withHint(err, hints.ForStateFile(a.statePath()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// hintError appends an actionable hint to an error message.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() + e.hint }
func (e *hintError) Unwrap() error { return e.err }

func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &hintError{err: err, hint: hint}
}
