package log_service

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// ConsoleLogService writes colorized structured logs to the given writer.
type ConsoleLogService struct {
	source string
	logger *slog.Logger
}

func NewConsoleLogService(w io.Writer, source string, level slog.Level) *ConsoleLogService {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})

	return &ConsoleLogService{
		source: source,
		logger: slog.New(handler),
	}
}

func (s *ConsoleLogService) Debug(event LogEvent) {
	s.logger.Debug(event.Message, s.attrs(event)...)
}

func (s *ConsoleLogService) Info(event LogEvent) {
	s.logger.Info(event.Message, s.attrs(event)...)
}

func (s *ConsoleLogService) Warn(event LogEvent) {
	s.logger.Warn(event.Message, s.attrs(event)...)
}

func (s *ConsoleLogService) Error(event LogEvent) {
	s.logger.Error(event.Message, s.attrs(event)...)
}

func (s *ConsoleLogService) attrs(event LogEvent) []any {
	attrs := make([]any, 0, len(event.Metadata)*2+2)
	source := event.Source
	if source == "" {
		source = s.source
	}
	if source != "" {
		attrs = append(attrs, "source", source)
	}
	for key, value := range event.Metadata {
		attrs = append(attrs, key, value)
	}
	return attrs
}
