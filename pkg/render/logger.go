package render

import (
	"log"
	"os"
)

// Logger receives render progress messages.
type Logger interface {
	Printf(format string, args ...any)
}

// NewDefaultLogger returns a logger writing to stderr.
func NewDefaultLogger() Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Printf(string, ...any) {}
