package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/standards/internal/domain"
)

// ErrEnrichmentJobStatusConflict indicates that a job cannot transition to the requested state.
var ErrEnrichmentJobStatusConflict = errors.New("enrichment job status conflict")

const uniqueViolation = "23505"

const (
	constraintSpaceSlug       = "standards_space_slug_unique"
	constraintStandardVersion = "standard_versions_standard_version_unique"
)

// wrapError converts driver errors into domain errors while keeping the
// original failure in the chain.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintSpaceSlug:
			return fmt.Errorf("%s: %w", op, domain.ErrSlugTaken)
		case constraintStandardVersion:
			return fmt.Errorf("%s: %w", op, domain.ErrVersionConflict)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
