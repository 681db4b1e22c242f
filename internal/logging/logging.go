// Package logging builds the zap logger used by the md2html command.
//
// Console output always goes to the supplied error stream so that command
// output on stdout stays machine-readable. An optional file logger can be
// added with its own level.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Level names accepted in configuration.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// File modes accepted in configuration.
const (
	ModeAppend    = "append"
	ModeOverwrite = "overwrite"
)

// ErrInvalidLevel indicates an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// Options selects console and file logging.
type Options struct {
	ConsoleLevel string    // none, normal, debug
	Console      io.Writer // defaults to os.Stderr
	FileLevel    string    // none (default), normal, debug
	FilePath     string    // required when FileLevel is not none
	FileMode     string    // append (default) or overwrite
}

// ValidLevel reports whether name is an accepted level ("" counts as none).
func ValidLevel(name string) bool {
	switch name {
	case "", LevelNone, LevelNormal, LevelDebug:
		return true
	}
	return false
}

// New returns a logger named "md2html" and a cleanup function that syncs and
// closes the log file, if any.
func New(opts Options) (*zap.Logger, func(), error) {
	if !ValidLevel(opts.ConsoleLevel) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLevel, opts.ConsoleLevel)
	}
	if !ValidLevel(opts.FileLevel) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLevel, opts.FileLevel)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCore := newCore(newEncoder(ec), zapcore.Lock(zapcore.AddSync(console)), opts.ConsoleLevel)

	fileCore := zapcore.NewNopCore()
	closeFile := func() {}
	if lvl := opts.FileLevel; lvl != "" && lvl != LevelNone {
		f, err := openLogFile(opts.FilePath, opts.FileMode)
		if err != nil {
			return nil, nil, err
		}
		fileCore = newCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), lvl)
		closeFile = func() { _ = f.Close() }
	}

	log := zap.New(zapcore.NewTee(consoleCore, fileCore)).Named("md2html")
	cleanup := func() {
		_ = log.Sync()
		closeFile()
	}
	return log, cleanup, nil
}

// newCore maps a level name to a core; "none" and "" disable output.
func newCore(enc zapcore.Encoder, ws zapcore.WriteSyncer, level string) zapcore.Core {
	switch level {
	case LevelDebug:
		return zapcore.NewCore(enc, ws, zapcore.DebugLevel)
	case LevelNormal:
		return zapcore.NewCore(enc, ws, zapcore.InfoLevel)
	default:
		return zapcore.NewNopCore()
	}
}

func openLogFile(path, mode string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("log file destination is empty")
	}
	flags := os.O_CREATE | os.O_WRONLY
	if mode == ModeOverwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644) // #nosec G302 G304 -- user-configured log file
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// consoleEnc drops the verbose form of error fields on the console;
// the file logger keeps it.
type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
