package log

import (
	"testing"

	"github.com/rs/zerolog"
)

// NewTestingLogger converts a testing.T into a logging interface.
// Output is only written when the test fails or is run with the
// verbose (-v) flag.
func NewTestingLogger(t testing.TB) Logger {
	return NewTestingLoggerWithLevel(t, LogLevelDebug)
}

// NewTestingLoggerWithLevel creates a testing logger instance at a
// specific level that wraps the behavior of testing.T.Log().
func NewTestingLoggerWithLevel(t testing.TB, level string) Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		t.Fatalf("unexpected log level (%s): %v", level, err)
	}

	return defaultLogger{
		Logger: zerolog.New(newTestingWriter(t)).Level(logLevel),
	}
}

type testingWriter struct {
	t testing.TB
}

func newTestingWriter(t testing.TB) testingWriter {
	return testingWriter{t: t}
}

func (w testingWriter) Write(bz []byte) (int, error) {
	w.t.Log(string(bz))
	return len(bz), nil
}
