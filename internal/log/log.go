// Package log provides the logging backend, based around the go-logging
// package.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

const logFormat = "%{time:15:04:05.000} %{level:.4s} %{module}: %{message}"

// Backend is a log backend shared by every module logger of a process.
type Backend struct {
	w       io.Writer
	closer  io.Closer
	backend logging.LeveledBackend
}

// GetLogger returns a per-module logger that writes to the backend.
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b.backend)
	return l
}

// Close releases the log file, if any.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// New initializes a logging backend writing to file f (stdout when empty)
// at the given level, or discarding everything when disable is set.
func New(f string, level string, disable bool) (*Backend, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer
		closer io.Closer
	)
	switch {
	case disable:
		w = io.Discard
	case f == "":
		w = os.Stdout
	default:
		const fileMode = 0o600

		flags := os.O_CREATE | os.O_APPEND | os.O_WRONLY
		fh, err := os.OpenFile(f, flags, fileMode)
		if err != nil {
			return nil, fmt.Errorf("log: failed to create log file: %v", err)
		}
		w, closer = fh, fh
	}
	return NewWithWriter(w, lvl, closer), nil
}

// NewWithWriter builds a backend on an arbitrary writer.
func NewWithWriter(w io.Writer, lvl logging.Level, closer io.Closer) *Backend {
	logFmt := logging.MustStringFormatter(logFormat)
	base := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(base, logFmt)

	b := &Backend{w: w, closer: closer}
	b.backend = logging.AddModuleLevel(formatted)
	b.backend.SetLevel(lvl, "")
	return b
}

// Discard returns a backend that drops everything. Handy in tests.
func Discard() *Backend {
	return NewWithWriter(io.Discard, logging.CRITICAL, nil)
}

// ParseLevel maps a level name to a go-logging level. Empty means NOTICE.
func ParseLevel(l string) (logging.Level, error) {
	switch strings.ToUpper(l) {
	case "ERROR":
		return logging.ERROR, nil
	case "WARNING":
		return logging.WARNING, nil
	case "NOTICE", "":
		return logging.NOTICE, nil
	case "INFO":
		return logging.INFO, nil
	case "DEBUG":
		return logging.DEBUG, nil
	default:
		return logging.CRITICAL, fmt.Errorf("log: invalid level: '%v'", l)
	}
}
