package log_service

import "time"

const (
	DebugLevel = "DEBUG"
	InfoLevel  = "INFO"
	WarnLevel  = "WARN"
	ErrorLevel = "ERROR"
)

// LogEvent is a single structured log record. Metadata keys are free-form
// and flattened into the underlying handler's attributes.
type LogEvent struct {
	Timestamp time.Time
	Source    string
	Message   string
	Metadata  map[string]any
}

type LogService interface {
	Debug(event LogEvent)
	Info(event LogEvent)
	Warn(event LogEvent)
	Error(event LogEvent)
}
