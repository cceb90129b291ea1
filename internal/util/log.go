package util

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Unknown level strings fall back to info.
func NewLogger(service, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger().Level(lvl)
}
