package domain

import "errors"

var (
	// ErrNotFound marks a missing standard, version, rule or job.
	ErrNotFound = errors.New("not found")
	// ErrNoVersions fires when a standard exists without any version row.
	ErrNoVersions = errors.New("standard has no versions")
	// ErrValidation marks input that was rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrVersionConflict indicates a concurrent edit already advanced the standard.
	ErrVersionConflict = errors.New("standard version conflict")
	// ErrSlugTaken is returned when a slug is already used in the space.
	ErrSlugTaken = errors.New("slug already taken")
)
