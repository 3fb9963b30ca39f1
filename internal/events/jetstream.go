package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultStream is the JetStream stream holding standard events.
const DefaultStream = "STANDARDS"

// DefaultSubjectPrefix prefixes every published subject.
const DefaultSubjectPrefix = "standards.events"

// JetStreamSink publishes events to JetStream with subjects of the form
// <prefix>.<event type>.<standard id>.
type JetStreamSink struct {
	js     jetstream.JetStream
	prefix string
}

func NewJetStreamSink(js jetstream.JetStream, prefix string) *JetStreamSink {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultSubjectPrefix
	}
	return &JetStreamSink{js: js, prefix: strings.TrimSuffix(prefix, ".")}
}

// EnsureStream creates or updates the stream capturing the sink's subjects.
func (s *JetStreamSink) EnsureStream(ctx context.Context, name string) error {
	if name == "" {
		name = DefaultStream
	}
	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{s.prefix + ".>"},
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", name, err)
	}
	return nil
}

// Subject returns the subject an event is published on.
func (s *JetStreamSink) Subject(event Event) string {
	return fmt.Sprintf("%s.%s.%s", s.prefix, event.EventType(), event.Key())
}

func (s *JetStreamSink) Emit(ctx context.Context, event Event) error {
	if s.js == nil {
		return errors.New("jetstream not configured")
	}
	data, err := json.Marshal(struct {
		Type    Type  `json:"type"`
		Payload Event `json:"payload"`
	}{Type: event.EventType(), Payload: event})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := s.js.Publish(ctx, s.Subject(event), data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
