// Package repositories provides the PostgreSQL-backed implementations of the
// domain persistence contracts. Every method takes a context.Context and uses
// parameterised queries exclusively.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

const ruleColumns = `id, name, rule_type, priority, enabled, conditions, weights,
	min_matching_score, max_assignments_per_org, notify_on_match,
	usage_count, success_count, created_at, updated_at`

// RuleRepository is the PostgreSQL implementation of rule.Repository.
type RuleRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRuleRepository constructs a ready-to-use RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool, logger logging.Logger) *RuleRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RuleRepository{pool: pool, logger: logger.Named("rule_repo")}
}

func (r *RuleRepository) Create(ctx context.Context, ar *rule.AssignmentRule) error {
	condJSON, err := json.Marshal(ar.Conditions)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode rule conditions")
	}
	weightsJSON, err := json.Marshal(ar.Weights)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode rule weights")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO assignment_rules (
			id, name, rule_type, priority, enabled, conditions, weights,
			min_matching_score, max_assignments_per_org, notify_on_match,
			usage_count, success_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		ar.ID, ar.Name, ar.RuleType, ar.Priority, ar.Enabled, condJSON, weightsJSON,
		ar.MinMatchingScore, ar.MaxAssignmentsPerOrg, ar.NotifyOnMatch,
		ar.UsageCount, ar.SuccessCount, ar.CreatedAt, ar.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert assignment rule",
			logging.String("rule_id", string(ar.ID)), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert assignment rule")
	}
	return nil
}

func (r *RuleRepository) Update(ctx context.Context, ar *rule.AssignmentRule) error {
	condJSON, err := json.Marshal(ar.Conditions)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode rule conditions")
	}
	weightsJSON, err := json.Marshal(ar.Weights)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode rule weights")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE assignment_rules SET
			name = $2, rule_type = $3, priority = $4, enabled = $5,
			conditions = $6, weights = $7, min_matching_score = $8,
			max_assignments_per_org = $9, notify_on_match = $10, updated_at = $11
		WHERE id = $1`,
		ar.ID, ar.Name, ar.RuleType, ar.Priority, ar.Enabled,
		condJSON, weightsJSON, ar.MinMatchingScore,
		ar.MaxAssignmentsPerOrg, ar.NotifyOnMatch, ar.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update assignment rule")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", ar.ID)
	}
	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignment_rules WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to delete assignment rule")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
	}
	return nil
}

func (r *RuleRepository) GetByID(ctx context.Context, id common.ID) (*rule.AssignmentRule, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM assignment_rules WHERE id = $1`, id)
	ar, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return ar, nil
}

func (r *RuleRepository) List(ctx context.Context, filter rule.ListFilter) ([]*rule.AssignmentRule, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if filter.RuleType != nil {
		args = append(args, *filter.RuleType)
		where += fmt.Sprintf(" AND rule_type = $%d", len(args))
	}
	if filter.EnabledOnly {
		where += " AND enabled"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignment_rules`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to count assignment rules")
	}

	query := `SELECT ` + ruleColumns + ` FROM assignment_rules` + where + ` ORDER BY priority ASC, id ASC`
	if filter.Pagination != nil {
		args = append(args, filter.Pagination.PageSize, filter.Pagination.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list assignment rules")
	}
	defer rows.Close()

	out, err := scanRules(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *RuleRepository) ListEnabled(ctx context.Context, ruleType *rule.Strategy) ([]*rule.AssignmentRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM assignment_rules WHERE enabled`
	args := []interface{}{}
	if ruleType != nil {
		args = append(args, *ruleType)
		query += " AND rule_type = $1"
	}
	query += " ORDER BY priority ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list enabled rules")
	}
	defer rows.Close()
	return scanRules(rows)
}

// IncrementUsage relies on a single UPDATE so concurrent bumps never lose
// updates.
func (r *RuleRepository) IncrementUsage(ctx context.Context, id common.ID, success bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignment_rules SET
			usage_count = usage_count + 1,
			success_count = success_count + CASE WHEN $2 THEN 1 ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1`, id, success)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to increment rule counters")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
	}
	return nil
}

func (r *RuleRepository) AssignmentCount(ctx context.Context, ruleID, orgID common.ID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rule_assignments WHERE rule_id = $1 AND org_id = $2`,
		ruleID, orgID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to count rule assignments")
	}
	return count, nil
}

func (r *RuleRepository) RecordAssignment(ctx context.Context, ruleID, orgID common.ID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rule_assignments (rule_id, org_id, assigned_at) VALUES ($1, $2, NOW())`,
		ruleID, orgID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to record rule assignment")
	}
	return nil
}

func scanRule(row pgx.Row) (*rule.AssignmentRule, error) {
	var (
		ar          rule.AssignmentRule
		condJSON    []byte
		weightsJSON []byte
	)
	err := row.Scan(
		&ar.ID, &ar.Name, &ar.RuleType, &ar.Priority, &ar.Enabled, &condJSON, &weightsJSON,
		&ar.MinMatchingScore, &ar.MaxAssignmentsPerOrg, &ar.NotifyOnMatch,
		&ar.UsageCount, &ar.SuccessCount, &ar.CreatedAt, &ar.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan assignment rule")
	}
	if err := json.Unmarshal(condJSON, &ar.Conditions); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode rule conditions")
	}
	if err := json.Unmarshal(weightsJSON, &ar.Weights); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode rule weights")
	}
	return &ar, nil
}

func scanRules(rows pgx.Rows) ([]*rule.AssignmentRule, error) {
	var out []*rule.AssignmentRule
	for rows.Next() {
		ar, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate assignment rules")
	}
	return out, nil
}
