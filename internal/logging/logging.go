// Package logging builds the program's logrus logger. The terminal belongs to
// the UI, so output goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/bem92/yoga-app/internal/config"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to cfg.File at cfg.Level, plus a close func
// for the underlying file.
func New(cfg config.LogConfig) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = io.Discard
	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	return newLogger(out, level), closeFn, nil
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	return l
}
