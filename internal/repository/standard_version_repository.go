package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/domain"
)

const standardVersionColumns = `id, standard_id, name, slug, description, scope, version, summary, user_id, created_at`

// standardVersionRepository implements StandardVersionRepository on Postgres
type standardVersionRepository struct {
	db db.DBTX
}

// NewStandardVersionRepository creates a new standard version repository
func NewStandardVersionRepository(conn db.DBTX) StandardVersionRepository {
	return &standardVersionRepository{db: conn}
}

func (r *standardVersionRepository) Add(ctx context.Context, version domain.StandardVersion) (domain.StandardVersion, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO standard_versions (`+standardVersionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+standardVersionColumns,
		version.ID, version.StandardID, version.Name, version.Slug, version.Description,
		version.Scope, version.Version, version.Summary, version.UserID, version.CreatedAt,
	)
	out, err := scanStandardVersion(row)
	if err != nil {
		return domain.StandardVersion{}, wrapError("insert standard version", err)
	}
	return out, nil
}

func (r *standardVersionRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.StandardVersion, error) {
	row := r.db.QueryRow(ctx, `SELECT `+standardVersionColumns+` FROM standard_versions WHERE id = $1`, id)
	out, err := scanStandardVersion(row)
	if err != nil {
		return domain.StandardVersion{}, wrapError(fmt.Sprintf("get standard version %s", id), err)
	}
	return out, nil
}

// FindByStandardID returns every version of a standard, oldest first
func (r *standardVersionRepository) FindByStandardID(ctx context.Context, standardID uuid.UUID) ([]domain.StandardVersion, error) {
	rows, err := r.db.Query(ctx, `SELECT `+standardVersionColumns+` FROM standard_versions WHERE standard_id = $1 ORDER BY version`, standardID)
	if err != nil {
		return nil, wrapError("list standard versions", err)
	}
	defer rows.Close()

	var result []domain.StandardVersion
	for rows.Next() {
		version, scanErr := scanStandardVersion(rows)
		if scanErr != nil {
			return nil, wrapError("scan standard version", scanErr)
		}
		result = append(result, version)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list standard versions", err)
	}
	return result, nil
}

func (r *standardVersionRepository) FindLatestByStandardID(ctx context.Context, standardID uuid.UUID) (domain.StandardVersion, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+standardVersionColumns+` FROM standard_versions
		WHERE standard_id = $1
		ORDER BY version DESC
		LIMIT 1`, standardID)
	out, err := scanStandardVersion(row)
	if err != nil {
		return domain.StandardVersion{}, wrapError(fmt.Sprintf("get latest version of standard %s", standardID), err)
	}
	return out, nil
}

func (r *standardVersionRepository) FindByStandardIDAndVersion(ctx context.Context, standardID uuid.UUID, version int) (domain.StandardVersion, error) {
	row := r.db.QueryRow(ctx, `SELECT `+standardVersionColumns+` FROM standard_versions WHERE standard_id = $1 AND version = $2`, standardID, version)
	out, err := scanStandardVersion(row)
	if err != nil {
		return domain.StandardVersion{}, wrapError(fmt.Sprintf("get version %d of standard %s", version, standardID), err)
	}
	return out, nil
}

// UpdateSummary sets the only mutable column of a version row
func (r *standardVersionRepository) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	tag, err := r.db.Exec(ctx, `UPDATE standard_versions SET summary = $2 WHERE id = $1`, id, summary)
	if err != nil {
		return wrapError("update standard version summary", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update summary of standard version %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanStandardVersion(row pgx.Row) (domain.StandardVersion, error) {
	var v domain.StandardVersion
	err := row.Scan(&v.ID, &v.StandardID, &v.Name, &v.Slug, &v.Description, &v.Scope, &v.Version, &v.Summary, &v.UserID, &v.CreatedAt)
	return v, err
}
