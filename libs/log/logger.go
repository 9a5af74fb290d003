package log

const (
	// LogFormatPlain defines a logging format.
	LogFormatPlain string = "plain"
	// LogFormatText defines a logging format.
	LogFormatText string = "text"
	// LogFormatJSON defines a logging format.
	LogFormatJSON string = "json"

	// Supported logging levels.
	LogLevelTrace = "trace"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Logger is what any component of this tree should take to log.
type Logger interface {
	Debug(msg string, keyVals ...interface{})
	Info(msg string, keyVals ...interface{})
	Error(msg string, keyVals ...interface{})

	With(keyVals ...interface{}) Logger
}
