package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

const flowColumns = `id, case_package_id, case_id, category, event_type, event_time,
	operator_id, operator_name, before_status, after_status, amount,
	severity, remark, created_at`

// FlowRepository is the PostgreSQL implementation of casepackage.FlowStore.
// The table is append-only; there is deliberately no update or delete path.
type FlowRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewFlowRepository constructs a ready-to-use FlowRepository.
func NewFlowRepository(pool *pgxpool.Pool, logger logging.Logger) *FlowRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FlowRepository{pool: pool, logger: logger.Named("flow_repo")}
}

func (r *FlowRepository) Append(ctx context.Context, rec *casepackage.FlowRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, flowInsertSQL, flowInsertArgs(rec)...)
	if err != nil {
		r.logger.Error("failed to append flow record",
			logging.String("case_package_id", string(rec.CasePackageID)), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeFlowAppendFailed, "failed to append flow record")
	}
	return nil
}

func (r *FlowRepository) ListByPackage(ctx context.Context, pkgID common.ID, filter casepackage.FlowFilter) ([]*casepackage.FlowRecord, int64, error) {
	where := " WHERE case_package_id = $1"
	args := []interface{}{pkgID}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		where += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	if filter.DateRange != nil {
		args = append(args, time.Time(filter.DateRange.From), time.Time(filter.DateRange.To))
		where += fmt.Sprintf(" AND event_time BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM case_flow_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to count flow records")
	}

	query := `SELECT ` + flowColumns + ` FROM case_flow_records` + where + ` ORDER BY event_time DESC, id DESC`
	if filter.Pagination != nil {
		args = append(args, filter.Pagination.PageSize, filter.Pagination.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list flow records")
	}
	defer rows.Close()

	var out []*casepackage.FlowRecord
	for rows.Next() {
		rec, err := scanFlowRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate flow records")
	}
	return out, total, nil
}

const flowInsertSQL = `
	INSERT INTO case_flow_records (
		id, case_package_id, case_id, category, event_type, event_time,
		operator_id, operator_name, before_status, after_status, amount,
		severity, remark, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

func flowInsertArgs(rec *casepackage.FlowRecord) []interface{} {
	return []interface{}{
		rec.ID, rec.CasePackageID, rec.CaseID, rec.Category, rec.EventType, rec.EventTime,
		rec.OperatorID, rec.OperatorName, rec.BeforeStatus, rec.AfterStatus, rec.Amount,
		rec.Severity, rec.Remark, rec.CreatedAt,
	}
}

// insertFlowRecord appends a flow record inside an open transaction; the
// package repository uses it to keep status writes and their audit entries in
// one atomic unit.
func insertFlowRecord(ctx context.Context, tx pgx.Tx, rec *casepackage.FlowRecord) error {
	if rec == nil {
		return nil
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, flowInsertSQL, flowInsertArgs(rec)...); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFlowAppendFailed, "failed to append flow record")
	}
	return nil
}

func scanFlowRecord(row pgx.Row) (*casepackage.FlowRecord, error) {
	var rec casepackage.FlowRecord
	err := row.Scan(
		&rec.ID, &rec.CasePackageID, &rec.CaseID, &rec.Category, &rec.EventType, &rec.EventTime,
		&rec.OperatorID, &rec.OperatorName, &rec.BeforeStatus, &rec.AfterStatus, &rec.Amount,
		&rec.Severity, &rec.Remark, &rec.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan flow record")
	}
	return &rec, nil
}
