package events

import (
	"context"

	"github.com/rpattn/standards/internal/logger"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: logger.OrNop(log).With("component", "EventLog")}
}

func (s *LogSink) Emit(_ context.Context, event Event) error {
	s.log.Info("domain event", "type", string(event.EventType()), "standard_id", event.Key(), "event", event)
	return nil
}
