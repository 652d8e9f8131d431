package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"sokoni/config"
)

// New builds the service logger. Pretty output is for local development;
// production emits JSON lines.
func New(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var l zerolog.Logger
	if cfg.Pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stdout)
	}

	return l.With().
		Timestamp().
		Str("service", "sokoni").
		Logger()
}
