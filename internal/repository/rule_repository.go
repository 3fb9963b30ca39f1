package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/domain"
)

const ruleColumns = `id, standard_version_id, content, position, created_at`

// ruleRepository implements RuleRepository on Postgres
type ruleRepository struct {
	db db.DBTX
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(conn db.DBTX) RuleRepository {
	return &ruleRepository{db: conn}
}

func (r *ruleRepository) Add(ctx context.Context, rule domain.Rule) (domain.Rule, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+ruleColumns,
		rule.ID, rule.StandardVersionID, rule.Content, rule.Position, rule.CreatedAt,
	)
	out, err := scanRule(row)
	if err != nil {
		return domain.Rule{}, wrapError("insert rule", err)
	}
	return out, nil
}

func (r *ruleRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Rule, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = $1`, id)
	out, err := scanRule(row)
	if err != nil {
		return domain.Rule{}, wrapError(fmt.Sprintf("get rule %s", id), err)
	}
	return out, nil
}

func (r *ruleRepository) FindByStandardVersionID(ctx context.Context, standardVersionID uuid.UUID) ([]domain.Rule, error) {
	return r.FindByStandardVersionIDs(ctx, []uuid.UUID{standardVersionID})
}

// FindByStandardVersionIDs loads the rules of several versions in one round trip
func (r *ruleRepository) FindByStandardVersionIDs(ctx context.Context, standardVersionIDs []uuid.UUID) ([]domain.Rule, error) {
	if len(standardVersionIDs) == 0 {
		return []domain.Rule{}, nil
	}
	ids := make([]string, len(standardVersionIDs))
	for i, id := range standardVersionIDs {
		ids[i] = id.String()
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+ruleColumns+` FROM rules
		WHERE standard_version_id = ANY($1::uuid[])
		ORDER BY standard_version_id, position, created_at`, ids)
	if err != nil {
		return nil, wrapError("list rules", err)
	}
	defer rows.Close()

	result := []domain.Rule{}
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, wrapError("scan rule", scanErr)
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list rules", err)
	}
	return result, nil
}

func scanRule(row pgx.Row) (domain.Rule, error) {
	var rule domain.Rule
	err := row.Scan(&rule.ID, &rule.StandardVersionID, &rule.Content, &rule.Position, &rule.CreatedAt)
	return rule, err
}
