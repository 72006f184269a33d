package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// ProfileRepository is the PostgreSQL implementation of
// organization.ProfileStore.
type ProfileRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewProfileRepository constructs a ready-to-use ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool, logger logging.Logger) *ProfileRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ProfileRepository{pool: pool, logger: logger.Named("profile_repo")}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, orgID common.ID) (*organization.CapabilityProfile, error) {
	var (
		p          organization.CapabilityProfile
		regionJSON []byte
		amountJSON []byte
		typeJSON   []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT org_id, org_name, region_strengths, amount_range_strengths,
		       case_type_strengths, current_load, average_success_rate, captured_at
		FROM org_capability_profiles WHERE org_id = $1`, orgID).Scan(
		&p.OrgID, &p.OrgName, &regionJSON, &amountJSON,
		&typeJSON, &p.CurrentLoad, &p.AverageSuccessRate, &p.CapturedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrCodeOrganizationNotFound, "organization %s not found", orgID)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to read capability profile")
	}

	for _, pair := range []struct {
		raw  []byte
		dest *map[string]float64
	}{
		{regionJSON, &p.RegionStrengths},
		{amountJSON, &p.AmountRangeStrengths},
		{typeJSON, &p.CaseTypeStrengths},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode capability profile")
		}
	}
	return &p, nil
}

// ListCandidateOrgIDs prefilters by region coverage when the query names a
// region. The filter is an optimization only; eligibility still decides.
func (r *ProfileRepository) ListCandidateOrgIDs(ctx context.Context, q organization.CandidateQuery) ([]common.ID, error) {
	query := `SELECT org_id FROM org_capability_profiles`
	args := []interface{}{}
	if q.Region != "" {
		args = append(args, q.Region)
		query += ` WHERE region_strengths ? $1`
	}
	query += ` ORDER BY org_id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list candidate organizations")
	}
	defer rows.Close()

	var out []common.ID
	for rows.Next() {
		var id common.ID
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan organization id")
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate candidate organizations")
	}
	return out, nil
}

func (r *ProfileRepository) SaveProfile(ctx context.Context, p *organization.CapabilityProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	regionJSON, err := json.Marshal(p.RegionStrengths)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode region strengths")
	}
	amountJSON, err := json.Marshal(p.AmountRangeStrengths)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode amount range strengths")
	}
	typeJSON, err := json.Marshal(p.CaseTypeStrengths)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode case type strengths")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO org_capability_profiles (
			org_id, org_name, region_strengths, amount_range_strengths,
			case_type_strengths, current_load, average_success_rate, captured_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (org_id) DO UPDATE SET
			org_name = EXCLUDED.org_name,
			region_strengths = EXCLUDED.region_strengths,
			amount_range_strengths = EXCLUDED.amount_range_strengths,
			case_type_strengths = EXCLUDED.case_type_strengths,
			current_load = EXCLUDED.current_load,
			average_success_rate = EXCLUDED.average_success_rate,
			captured_at = EXCLUDED.captured_at`,
		p.OrgID, p.OrgName, regionJSON, amountJSON,
		typeJSON, p.CurrentLoad, p.AverageSuccessRate, p.CapturedAt,
	)
	if err != nil {
		r.logger.Error("failed to upsert capability profile",
			logging.String("org_id", string(p.OrgID)), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to upsert capability profile")
	}
	return nil
}
