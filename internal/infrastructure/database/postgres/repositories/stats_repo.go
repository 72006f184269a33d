package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// StatisticsRepository answers aggregate assignment queries from the flow
// audit trail. It implements assignment.StatisticsStore.
type StatisticsRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewStatisticsRepository constructs a ready-to-use StatisticsRepository.
func NewStatisticsRepository(pool *pgxpool.Pool, logger logging.Logger) *StatisticsRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StatisticsRepository{pool: pool, logger: logger.Named("stats_repo")}
}

func (r *StatisticsRepository) AssignmentStatistics(ctx context.Context, orgID *common.ID, dateRange common.DateRange) (*assignment.AssignmentStatistics, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE f.event_type = 'package.assigned')  AS assigned,
			COUNT(*) FILTER (WHERE f.event_type = 'package.completed') AS completed,
			COUNT(*) FILTER (WHERE f.event_type = 'package.cancelled') AS cancelled,
			COUNT(*) FILTER (WHERE f.event_type = 'package.withdrawn') AS withdrawn,
			COALESCE(SUM(f.amount) FILTER (WHERE f.event_type = 'package.assigned'), 0) AS total_amount
		FROM case_flow_records f
		WHERE f.category = 'PACKAGE'
		  AND f.event_time BETWEEN $1 AND $2`
	args := []interface{}{time.Time(dateRange.From), time.Time(dateRange.To)}
	if orgID != nil {
		query += `
		  AND f.case_package_id IN (
			SELECT id FROM case_packages WHERE disposal_org_id = $3)`
		args = append(args, *orgID)
	}

	stats := &assignment.AssignmentStatistics{OrgID: orgID}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalAssigned, &stats.TotalCompleted, &stats.TotalCancelled,
		&stats.TotalWithdrawn, &stats.TotalAmount,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to aggregate assignment statistics")
	}
	if stats.TotalAssigned > 0 {
		stats.SuccessRate = float64(stats.TotalCompleted) / float64(stats.TotalAssigned)
	}
	return stats, nil
}
