package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-md2html/internal/fileutil"
	"github.com/alnah/go-md2html/internal/logging"
	"github.com/alnah/go-md2html/internal/yamlutil"
)

// AppName names the user config directory and the default state directory.
const AppName = "go-md2html"

// DefaultStateFile is the session file name inside the state directory.
const DefaultStateFile = "session.yaml"

// fallbackStateFile is used when no user config directory is available.
const fallbackStateFile = "md2html-session.yaml"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxStyleNameLength = 64
	MaxWorkers         = 8
)

// CSS error policies.
const (
	CSSOnErrorFail = "error" // job fails with a CSS read error
	CSSOnErrorLink = "link"  // document links the stylesheet instead
)

// Config holds the settings of the md2html command.
type Config struct {
	State     StateConfig     `yaml:"state"`
	CSS       CSSConfig       `yaml:"css"`
	Assets    AssetsConfig    `yaml:"assets"`
	Highlight HighlightConfig `yaml:"highlight"`
	Workers   int             `yaml:"workers"` // 0 = auto, 1 = sequential
	Logging   LoggingConfig   `yaml:"logging"`
}

// StateConfig locates the session file.
type StateConfig struct {
	Path string `yaml:"path"` // Empty = DefaultStatePath()
}

// CSSConfig defines stylesheet options.
type CSSConfig struct {
	Style   string `yaml:"style"`   // Built-in or custom style prepended to the session CSS
	OnError string `yaml:"onError"` // "error" (default) or "link"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded styles only
}

// HighlightConfig defines code block highlighting.
type HighlightConfig struct {
	Style string `yaml:"style"` // chroma style name, empty = github
}

// LoggingConfig defines console and file logging.
type LoggingConfig struct {
	Level string     `yaml:"level"` // none, normal, debug
	File  FileConfig `yaml:"file"`
}

// FileConfig defines the optional log file.
type FileConfig struct {
	Level string `yaml:"level"` // none (default), normal, debug
	Path  string `yaml:"path"`
	Mode  string `yaml:"mode"` // append (default), overwrite
}

// Validate checks field lengths and enumerations.
func (c *Config) Validate() error {
	if err := validateFieldLength("state.path", c.State.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("css.style", c.CSS.Style, MaxStyleNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("logging.file.path", c.Logging.File.Path, MaxPathLength); err != nil {
		return err
	}

	switch c.CSS.OnError {
	case "", CSSOnErrorFail, CSSOnErrorLink:
	default:
		return fmt.Errorf("%w: css.onError %q (must be error or link)", ErrInvalidValue, c.CSS.OnError)
	}

	if c.Highlight.Style != "" && !slices.Contains(styles.Names(), c.Highlight.Style) {
		return fmt.Errorf("%w: highlight.style %q is not a known chroma style", ErrInvalidValue, c.Highlight.Style)
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: logging.level %q (must be none, normal or debug)", ErrInvalidValue, c.Logging.Level)
	}
	if !logging.ValidLevel(c.Logging.File.Level) {
		return fmt.Errorf("%w: logging.file.level %q (must be none, normal or debug)", ErrInvalidValue, c.Logging.File.Level)
	}
	switch c.Logging.File.Mode {
	case "", logging.ModeAppend, logging.ModeOverwrite:
	default:
		return fmt.Errorf("%w: logging.file.mode %q (must be append or overwrite)", ErrInvalidValue, c.Logging.File.Mode)
	}
	if lvl := c.Logging.File.Level; lvl != "" && lvl != logging.LevelNone && c.Logging.File.Path == "" {
		return fmt.Errorf("%w: logging.file.path is required when logging.file.level is %s", ErrInvalidValue, lvl)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		CSS:     CSSConfig{OnError: CSSOnErrorFail},
		Workers: 1,
		Logging: LoggingConfig{Level: logging.LevelNormal},
	}
}

// StatePath returns the configured session file or the default one.
func (c *Config) StatePath() string {
	if c.State.Path != "" {
		return c.State.Path
	}
	return DefaultStatePath()
}

// DefaultStatePath returns <user config dir>/go-md2html/session.yaml, or
// md2html-session.yaml in the current directory when the user config
// directory is unknown.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return fallbackStateFile
	}
	return filepath.Join(dir, AppName, DefaultStateFile)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Missing keys keep their DefaultConfig values; unknown keys are errors.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2html/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Name: name, Tried: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }
