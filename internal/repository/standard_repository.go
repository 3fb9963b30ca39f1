package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/domain"
)

const standardColumns = `id, space_id, name, slug, description, scope, version, user_id, created_at, updated_at`

// standardRepository implements StandardRepository on Postgres
type standardRepository struct {
	db db.DBTX
}

// NewStandardRepository creates a new standard repository
func NewStandardRepository(conn db.DBTX) StandardRepository {
	return &standardRepository{db: conn}
}

func (r *standardRepository) Add(ctx context.Context, standard domain.Standard) (domain.Standard, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO standards (`+standardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+standardColumns,
		standard.ID, standard.SpaceID, standard.Name, standard.Slug, standard.Description,
		standard.Scope, standard.Version, standard.UserID, standard.CreatedAt, standard.UpdatedAt,
	)
	out, err := scanStandard(row)
	if err != nil {
		return domain.Standard{}, wrapError("create standard", err)
	}
	return out, nil
}

// GetByID retrieves a standard by ID
func (r *standardRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Standard, error) {
	row := r.db.QueryRow(ctx, `SELECT `+standardColumns+` FROM standards WHERE id = $1`, id)
	out, err := scanStandard(row)
	if err != nil {
		return domain.Standard{}, wrapError(fmt.Sprintf("get standard %s", id), err)
	}
	return out, nil
}

// FindBySlug retrieves a standard by its slug within a space
func (r *standardRepository) FindBySlug(ctx context.Context, spaceID uuid.UUID, slug string) (domain.Standard, error) {
	row := r.db.QueryRow(ctx, `SELECT `+standardColumns+` FROM standards WHERE space_id = $1 AND slug = $2`, spaceID, slug)
	out, err := scanStandard(row)
	if err != nil {
		return domain.Standard{}, wrapError(fmt.Sprintf("get standard by slug %s", slug), err)
	}
	return out, nil
}

// Update writes the mutable fields guarded by an optimistic version check
func (r *standardRepository) Update(ctx context.Context, standard domain.Standard, expectedVersion int) (domain.Standard, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE standards
		SET name = $3, description = $4, scope = $5, version = $6, user_id = $7, updated_at = $8
		WHERE id = $1 AND version = $2
		RETURNING `+standardColumns,
		standard.ID, expectedVersion, standard.Name, standard.Description, standard.Scope,
		standard.Version, standard.UserID, standard.UpdatedAt,
	)
	out, err := scanStandard(row)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Standard{}, wrapError("update standard", err)
	}
	// Either the row is gone or someone else advanced the version first.
	if _, getErr := r.GetByID(ctx, standard.ID); getErr != nil {
		return domain.Standard{}, getErr
	}
	return domain.Standard{}, fmt.Errorf("update standard %s at version %d: %w", standard.ID, expectedVersion, domain.ErrVersionConflict)
}

// ListBySpace returns every standard of a space ordered by name
func (r *standardRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.Standard, error) {
	rows, err := r.db.Query(ctx, `SELECT `+standardColumns+` FROM standards WHERE space_id = $1 ORDER BY name, created_at`, spaceID)
	if err != nil {
		return nil, wrapError("list standards", err)
	}
	defer rows.Close()

	var result []domain.Standard
	for rows.Next() {
		standard, scanErr := scanStandard(rows)
		if scanErr != nil {
			return nil, wrapError("scan standard", scanErr)
		}
		result = append(result, standard)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list standards", err)
	}
	return result, nil
}

func scanStandard(row pgx.Row) (domain.Standard, error) {
	var s domain.Standard
	err := row.Scan(&s.ID, &s.SpaceID, &s.Name, &s.Slug, &s.Description, &s.Scope, &s.Version, &s.UserID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
