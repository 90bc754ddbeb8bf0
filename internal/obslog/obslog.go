// Package obslog wires the process-wide zerolog.Logger.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the logger's verbosity and output format.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output instead of JSON
}

// New builds a structured logger per Config.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// SetGlobal installs l as the package-level logger used by log.Info() etc.
// throughout the process.
func SetGlobal(l zerolog.Logger) {
	log.Logger = l
}

// ForComponent returns a child logger tagged with component, the
// convention every internal package uses to label its log lines.
func ForComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
