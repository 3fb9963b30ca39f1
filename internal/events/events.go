package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	TypeStandardCreated Type = "standard.created"
	TypeRuleAdded       Type = "standard.rule.added"
)

// Event is emitted by edit use cases after a version has been committed.
type Event interface {
	EventType() Type
	// Key is the aggregate the event belongs to, used for subject routing.
	Key() uuid.UUID
}

// Envelope carries fields shared by every event.
type Envelope struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	SpaceID        uuid.UUID  `json:"space_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	OriginSkill    *string    `json:"origin_skill,omitempty"`
	Source         string     `json:"source,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// StandardCreated is emitted once per created standard.
type StandardCreated struct {
	Envelope
	StandardID        uuid.UUID `json:"standard_id"`
	StandardVersionID uuid.UUID `json:"standard_version_id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	RuleCount         int       `json:"rule_count"`
}

func (StandardCreated) EventType() Type  { return TypeStandardCreated }
func (e StandardCreated) Key() uuid.UUID { return e.StandardID }

// RuleAdded is emitted for every rule newly attached to a standard.
type RuleAdded struct {
	Envelope
	StandardID        uuid.UUID `json:"standard_id"`
	StandardVersionID uuid.UUID `json:"standard_version_id"`
	RuleID            uuid.UUID `json:"rule_id"`
	Version           int       `json:"version"`
}

func (RuleAdded) EventType() Type  { return TypeRuleAdded }
func (e RuleAdded) Key() uuid.UUID { return e.StandardID }

// Sink receives domain events.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Emit(ctx context.Context, event Event) error { return f(ctx, event) }

// Multi fans an event out to several sinks and returns the first error.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, event Event) error {
	var firstErr error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
