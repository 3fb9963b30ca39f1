package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/domain"
)

const enrichmentJobColumns = `id, organization_id, user_id, standard_id, standard_version_id, status, summary,
	error_message, enqueued_at, started_at, completed_at, updated_at`

type enrichmentJobRepository struct {
	db db.DBTX
}

// NewEnrichmentJobRepository wires a repository for managing summary jobs.
func NewEnrichmentJobRepository(conn db.DBTX) EnrichmentJobRepository {
	return &enrichmentJobRepository{db: conn}
}

func (r *enrichmentJobRepository) Create(ctx context.Context, job domain.EnrichmentJob) (domain.EnrichmentJob, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = domain.EnrichmentJobStatusQueued
	}
	now := time.Now()
	row := r.db.QueryRow(ctx, `
		INSERT INTO enrichment_jobs (id, organization_id, user_id, standard_id, standard_version_id, status, enqueued_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+enrichmentJobColumns,
		job.ID, job.OrganizationID, job.UserID, job.StandardID, job.StandardVersionID, string(job.Status), now,
	)
	out, err := scanEnrichmentJob(row)
	if err != nil {
		return domain.EnrichmentJob{}, wrapError("insert enrichment job", err)
	}
	return out, nil
}

func (r *enrichmentJobRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.EnrichmentJob, error) {
	row := r.db.QueryRow(ctx, `SELECT `+enrichmentJobColumns+` FROM enrichment_jobs WHERE id = $1`, id)
	out, err := scanEnrichmentJob(row)
	if err != nil {
		return domain.EnrichmentJob{}, wrapError(fmt.Sprintf("get enrichment job %s", id), err)
	}
	return out, nil
}

func (r *enrichmentJobRepository) ListByStandardVersion(ctx context.Context, standardVersionID uuid.UUID) ([]domain.EnrichmentJob, error) {
	rows, err := r.db.Query(ctx, `SELECT `+enrichmentJobColumns+` FROM enrichment_jobs WHERE standard_version_id = $1 ORDER BY enqueued_at`, standardVersionID)
	if err != nil {
		return nil, wrapError("list enrichment jobs", err)
	}
	defer rows.Close()

	jobs := []domain.EnrichmentJob{}
	for rows.Next() {
		job, scanErr := scanEnrichmentJob(rows)
		if scanErr != nil {
			return nil, wrapError("scan enrichment job", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list enrichment jobs", err)
	}
	return jobs, nil
}

func (r *enrichmentJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE enrichment_jobs
		SET status = $2, started_at = now(), updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, string(domain.EnrichmentJobStatusRunning), string(domain.EnrichmentJobStatusQueued))
	if err != nil {
		return wrapError("mark enrichment job running", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrichmentJobStatusConflict
	}
	return nil
}

func (r *enrichmentJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, summary string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE enrichment_jobs
		SET status = $2, summary = NULLIF($3, ''), completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, string(domain.EnrichmentJobStatusCompleted), summary, string(domain.EnrichmentJobStatusRunning))
	if err != nil {
		return wrapError("mark enrichment job completed", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrichmentJobStatusConflict
	}
	return nil
}

func (r *enrichmentJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE enrichment_jobs
		SET status = $2, error_message = NULLIF($3, ''), completed_at = now(), updated_at = now()
		WHERE id = $1 AND status IN ($4, $5)`,
		id, string(domain.EnrichmentJobStatusFailed), errorMessage,
		string(domain.EnrichmentJobStatusQueued), string(domain.EnrichmentJobStatusRunning))
	if err != nil {
		return wrapError("mark enrichment job failed", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrichmentJobStatusConflict
	}
	return nil
}

func scanEnrichmentJob(row pgx.Row) (domain.EnrichmentJob, error) {
	var (
		job    domain.EnrichmentJob
		status string
	)
	err := row.Scan(
		&job.ID, &job.OrganizationID, &job.UserID, &job.StandardID, &job.StandardVersionID, &status,
		&job.Summary, &job.ErrorMessage, &job.EnqueuedAt, &job.StartedAt, &job.CompletedAt, &job.UpdatedAt,
	)
	job.Status = domain.EnrichmentJobStatus(status)
	return job, err
}
