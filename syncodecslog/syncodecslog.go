// Package syncodecslog wires up github.com/ausocean/utils/logging for the
// rest of the module: a small Logger interface is threaded through
// constructors, package-level helpers build a ready-to-use Logger from
// either an io.Writer or a rotated log file, and a nil Logger is always
// accepted by this module's packages as a silent no-op.
package syncodecslog

import (
	"io"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging capability every package in this module accepts.
// It is satisfied directly by github.com/ausocean/utils/logging.Logger.
type Logger interface {
	SetLevel(int8)
	Log(level int8, message string, params ...interface{})
}

// Re-exported verbosity levels, matching github.com/ausocean/utils/logging.
const (
	Debug   = logging.Debug
	Info    = logging.Info
	Warning = logging.Warning
	Error   = logging.Error
	Fatal   = logging.Fatal
)

// New returns a Logger that writes to dst at the given verbosity. When
// suppress is true, repeated identical log lines are rate-limited by
// logging.New.
func New(verbosity int8, dst io.Writer, suppress bool) Logger {
	return logging.New(verbosity, dst, suppress)
}

// rotatedFile bundles a lumberjack-backed Logger with the file it owns, so
// callers can close it on shutdown.
type rotatedFile struct {
	*lumberjack.Logger
}

func (f *rotatedFile) Close() error { return f.Logger.Close() }

// Default rotation parameters for file-backed loggers.
const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 10
	defaultMaxAgeDays = 28
)

// NewFile returns a Logger that writes to a size- and age-rotated file at
// path, plus the io.Closer that should be closed on shutdown to flush and
// release the underlying file handle.
func NewFile(path string, verbosity int8) (Logger, io.Closer, error) {
	f := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
	}
	return logging.New(verbosity, f, true), &rotatedFile{f}, nil
}

// noop is used where a nil Logger was passed to a constructor, so callers
// throughout this module never need a nil check before calling Log.
type noop struct{}

func (noop) SetLevel(int8) {}

func (noop) Log(level int8, message string, params ...interface{}) {}

// OrNoop returns l if non-nil, otherwise a Logger that silently discards
// everything. Package constructors that accept an optional Logger should
// store the result of this call rather than the raw argument.
func OrNoop(l Logger) Logger {
	if l == nil {
		return noop{}
	}
	return l
}
