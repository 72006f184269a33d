package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

const packageColumns = `id, name, source_org_id, region, city, amount, case_count,
	case_type, status, disposal_org_id, version, created_at, updated_at`

// PackageRepository is the PostgreSQL implementation of casepackage.Store.
// Status writes run inside one transaction together with their flow record so
// the audit trail can never diverge from the package state.
type PackageRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPackageRepository constructs a ready-to-use PackageRepository.
func NewPackageRepository(pool *pgxpool.Pool, logger logging.Logger) *PackageRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PackageRepository{pool: pool, logger: logger.Named("package_repo")}
}

func (r *PackageRepository) Create(ctx context.Context, p *casepackage.CasePackage) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO case_packages (
			id, name, source_org_id, region, city, amount, case_count,
			case_type, status, disposal_org_id, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.Name, p.SourceOrgID, p.Region, p.City, p.Amount, p.CaseCount,
		p.CaseType, p.Status, p.DisposalOrgID, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert case package",
			logging.String("case_package_id", string(p.ID)), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert case package")
	}
	return nil
}

func (r *PackageRepository) Get(ctx context.Context, id common.ID) (*casepackage.CasePackage, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM case_packages WHERE id = $1`, id)
	p, err := scanPackage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrCodePackageNotFound, "package %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PackageRepository) List(ctx context.Context, filter casepackage.ListFilter) ([]*casepackage.CasePackage, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.SourceOrgID != nil {
		args = append(args, *filter.SourceOrgID)
		where += fmt.Sprintf(" AND source_org_id = $%d", len(args))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		where += fmt.Sprintf(" AND region = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM case_packages`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to count case packages")
	}

	query := `SELECT ` + packageColumns + ` FROM case_packages` + where + ` ORDER BY created_at DESC, id ASC`
	if filter.Pagination != nil {
		args = append(args, filter.Pagination.PageSize, filter.Pagination.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list case packages")
	}
	defer rows.Close()

	var out []*casepackage.CasePackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate case packages")
	}
	return out, total, nil
}

func (r *PackageRepository) CommitAssignment(ctx context.Context, id common.ID, expectedVersion int64, orgID common.ID, rec *casepackage.FlowRecord) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE case_packages SET
				status = $3, disposal_org_id = $4, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $2`,
			id, expectedVersion, casepackage.StatusAssigned, orgID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to commit assignment")
		}
		if tag.RowsAffected() == 0 {
			return r.staleOrMissing(ctx, tx, id, expectedVersion)
		}
		return insertFlowRecord(ctx, tx, rec)
	})
}

func (r *PackageRepository) UpdateStatus(ctx context.Context, id common.ID, expectedVersion int64, newStatus casepackage.Status, rec *casepackage.FlowRecord) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		// A withdrawal releases the disposal organization.
		clearAssignment := newStatus == casepackage.StatusWithdrawn
		tag, err := tx.Exec(ctx, `
			UPDATE case_packages SET
				status = $3,
				disposal_org_id = CASE WHEN $4 THEN NULL ELSE disposal_org_id END,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $1 AND version = $2`,
			id, expectedVersion, newStatus, clearAssignment)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update package status")
		}
		if tag.RowsAffected() == 0 {
			return r.staleOrMissing(ctx, tx, id, expectedVersion)
		}
		return insertFlowRecord(ctx, tx, rec)
	})
}

func (r *PackageRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// staleOrMissing distinguishes a lost version race from a missing row after a
// zero-row UPDATE.
func (r *PackageRepository) staleOrMissing(ctx context.Context, tx pgx.Tx, id common.ID, expectedVersion int64) error {
	var current int64
	err := tx.QueryRow(ctx, `SELECT version FROM case_packages WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.Newf(apperrors.ErrCodePackageNotFound, "package %s not found", id)
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to read package version")
	}
	return apperrors.Newf(apperrors.ErrCodeConcurrentModification,
		"package %s version %d does not match expected %d", id, current, expectedVersion)
}

func scanPackage(row pgx.Row) (*casepackage.CasePackage, error) {
	var p casepackage.CasePackage
	err := row.Scan(
		&p.ID, &p.Name, &p.SourceOrgID, &p.Region, &p.City, &p.Amount, &p.CaseCount,
		&p.CaseType, &p.Status, &p.DisposalOrgID, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan case package")
	}
	return &p, nil
}
