package domain

import (
	"time"

	"github.com/google/uuid"
)

// Standard is the mutable aggregate root of a versioned collection of rules.
// Version always points at the newest StandardVersion row.
type Standard struct {
	ID          uuid.UUID  `json:"id"`
	SpaceID     uuid.UUID  `json:"space_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Scope       *string    `json:"scope,omitempty"`
	Version     int        `json:"version"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewStandard creates a standard at version 1 with immutable pattern
func NewStandard(spaceID uuid.UUID, name, slug, description string, scope *string, userID *uuid.UUID) Standard {
	now := time.Now()
	return Standard{
		ID:          uuid.New(),
		SpaceID:     spaceID,
		Name:        name,
		Slug:        slug,
		Description: description,
		Scope:       copyString(scope),
		Version:     1,
		UserID:      copyUUID(userID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithName returns a new standard with updated name. The slug is left untouched.
func (s Standard) WithName(name string) Standard {
	out := s.clone()
	out.Name = name
	out.UpdatedAt = time.Now()
	return out
}

// WithDescription returns a new standard with updated description
func (s Standard) WithDescription(description string) Standard {
	out := s.clone()
	out.Description = description
	out.UpdatedAt = time.Now()
	return out
}

// WithScope returns a new standard with updated scope
func (s Standard) WithScope(scope *string) Standard {
	out := s.clone()
	out.Scope = copyString(scope)
	out.UpdatedAt = time.Now()
	return out
}

// WithVersion returns a new standard pointing at the given version number
func (s Standard) WithVersion(version int) Standard {
	out := s.clone()
	out.Version = version
	out.UpdatedAt = time.Now()
	return out
}

// WithEditor records the last human editor. A nil user keeps the previous editor.
func (s Standard) WithEditor(userID *uuid.UUID) Standard {
	out := s.clone()
	if userID != nil {
		out.UserID = copyUUID(userID)
	}
	return out
}

func (s Standard) clone() Standard {
	out := s
	out.Scope = copyString(s.Scope)
	out.UserID = copyUUID(s.UserID)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// ScopeEqual reports whether two nullable scopes hold the same value.
// A nil scope and an empty scope are considered equal.
func ScopeEqual(a, b *string) bool {
	return ScopeValue(a) == ScopeValue(b)
}

// ScopeValue dereferences a nullable scope.
func ScopeValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
