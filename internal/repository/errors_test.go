package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/standards/internal/domain"
)

func TestWrapErrorMapsNoRowsToNotFound(t *testing.T) {
	err := wrapError("get standard", pgx.ErrNoRows)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWrapErrorMapsUniqueViolations(t *testing.T) {
	slugErr := wrapError("add standard", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintSpaceSlug})
	if !errors.Is(slugErr, domain.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", slugErr)
	}

	versionErr := wrapError("add version", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintStandardVersion})
	if !errors.Is(versionErr, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", versionErr)
	}
}

func TestWrapErrorKeepsUnknownFailures(t *testing.T) {
	cause := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "something_else"}
	err := wrapError("add rule", cause)
	if errors.Is(err, domain.ErrSlugTaken) || errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("unexpected domain mapping for %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected driver error to stay in the chain")
	}
	if wrapError("noop", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
