package cliconfig

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns a console logger on stderr, keeping stdout for the chat.
func Logger() zerolog.Logger {
	return NewLogger(os.Stderr)
}

// NewLogger returns a timestamped console logger writing to w.
func NewLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// SetLogLevel parses level and applies it process-wide.
func SetLogLevel(level string) error {
	if !validLogLevel(level) {
		return fmt.Errorf("log level must be one of %v, got %q", LogLevels, level)
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}
