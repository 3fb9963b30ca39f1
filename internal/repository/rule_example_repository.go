package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/domain"
)

const ruleExampleColumns = `id, rule_id, lang, positive, negative, position, created_at`

// ruleExampleRepository implements RuleExampleRepository on Postgres
type ruleExampleRepository struct {
	db db.DBTX
}

// NewRuleExampleRepository creates a new rule example repository
func NewRuleExampleRepository(conn db.DBTX) RuleExampleRepository {
	return &ruleExampleRepository{db: conn}
}

func (r *ruleExampleRepository) Add(ctx context.Context, example domain.RuleExample) (domain.RuleExample, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO rule_examples (`+ruleExampleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+ruleExampleColumns,
		example.ID, example.RuleID, example.Lang, example.Positive, example.Negative, example.Position, example.CreatedAt,
	)
	out, err := scanRuleExample(row)
	if err != nil {
		return domain.RuleExample{}, wrapError("insert rule example", err)
	}
	return out, nil
}

func (r *ruleExampleRepository) FindByRuleID(ctx context.Context, ruleID uuid.UUID) ([]domain.RuleExample, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ruleExampleColumns+` FROM rule_examples WHERE rule_id = $1 ORDER BY position, created_at, id`, ruleID)
	if err != nil {
		return nil, wrapError("list rule examples", err)
	}
	defer rows.Close()

	result := []domain.RuleExample{}
	for rows.Next() {
		example, scanErr := scanRuleExample(rows)
		if scanErr != nil {
			return nil, wrapError("scan rule example", scanErr)
		}
		result = append(result, example)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list rule examples", err)
	}
	return result, nil
}

func scanRuleExample(row pgx.Row) (domain.RuleExample, error) {
	var ex domain.RuleExample
	err := row.Scan(&ex.ID, &ex.RuleID, &ex.Lang, &ex.Positive, &ex.Negative, &ex.Position, &ex.CreatedAt)
	return ex, err
}
