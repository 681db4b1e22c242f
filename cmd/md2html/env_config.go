package main

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-md2html/internal/config"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string // MD2HTML_CONFIG: config file name or path
	StatePath  string // MD2HTML_STATE: session file path
	Style      string // MD2HTML_STYLE: style name
	LogLevel   string // MD2HTML_LOG_LEVEL: none, normal, debug
	Workers    int    // MD2HTML_WORKERS: parallel workers, -1 when unset
}

// knownEnvVars lists valid MD2HTML_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2HTML_CONFIG":    true,
	"MD2HTML_STATE":     true,
	"MD2HTML_STYLE":     true,
	"MD2HTML_LOG_LEVEL": true,
	"MD2HTML_WORKERS":   true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MD2HTML_CONFIG"),
		StatePath:  getenv("MD2HTML_STATE"),
		Style:      getenv("MD2HTML_STYLE"),
		LogLevel:   getenv("MD2HTML_LOG_LEVEL"),
		Workers:    workersUnset,
	}

	// Invalid numbers are ignored like unset variables.
	if workers := getenv("MD2HTML_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w >= 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2HTML_* variables.
func warnUnknownEnvVars(environ []string, log *zap.Logger) {
	for _, env := range environ {
		if strings.HasPrefix(env, "MD2HTML_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				log.Warn("unknown environment variable (typo?)", zap.String("name", name))
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the config file.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.StatePath != "" {
		cfg.State.Path = env.StatePath
	}
	if env.Style != "" {
		cfg.CSS.Style = env.Style
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.Workers != workersUnset {
		cfg.Workers = env.Workers
	}
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(f *commonFlags, cfg *config.Config) {
	if f.state != "" {
		cfg.State.Path = f.state
	}
	if f.style != "" {
		cfg.CSS.Style = f.style
	}
	if f.workers != workersUnset {
		cfg.Workers = f.workers
	}
}
