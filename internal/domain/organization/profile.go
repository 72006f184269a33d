// Package organization holds the disposal-organization capability model the
// assignment engine consumes. Profiles are read-only snapshots owned by the
// organization subsystem; the engine never mutates them.
package organization

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// Amount-bucket labels used by amountRangeStrengths keys.
const (
	AmountBucketUnder10K  = "lt_10k"
	AmountBucket10KTo100K = "10k_100k"
	AmountBucket100KTo1M  = "100k_1m"
	AmountBucketOver1M    = "gte_1m"
)

// AmountBucket maps a case-package amount to its strength-map key.
func AmountBucket(amount float64) string {
	switch {
	case amount < 10_000:
		return AmountBucketUnder10K
	case amount < 100_000:
		return AmountBucket10KTo100K
	case amount < 1_000_000:
		return AmountBucket100KTo1M
	default:
		return AmountBucketOver1M
	}
}

// CapabilityProfile is a point-in-time snapshot of an organization's disposal
// capability. All strength values and rates are in [0,1]. A scoring run uses
// one consistent snapshot per invocation.
type CapabilityProfile struct {
	OrgID                common.ID          `json:"org_id"`
	OrgName              string             `json:"org_name"`
	RegionStrengths      map[string]float64 `json:"region_strengths"`
	AmountRangeStrengths map[string]float64 `json:"amount_range_strengths"`
	CaseTypeStrengths    map[string]float64 `json:"case_type_strengths"`
	CurrentLoad          float64            `json:"current_load"`
	AverageSuccessRate   float64            `json:"average_success_rate"`
	CapturedAt           time.Time          `json:"captured_at"`
}

// Validate checks that every value sits inside its documented range.
func (p *CapabilityProfile) Validate() error {
	if p.OrgID == "" {
		return fmt.Errorf("capability profile: org_id is required")
	}
	if p.CurrentLoad < 0 || p.CurrentLoad > 1 {
		return fmt.Errorf("capability profile: current_load %v out of [0,1]", p.CurrentLoad)
	}
	if p.AverageSuccessRate < 0 || p.AverageSuccessRate > 1 {
		return fmt.Errorf("capability profile: average_success_rate %v out of [0,1]", p.AverageSuccessRate)
	}
	for name, m := range map[string]map[string]float64{
		"region_strengths":       p.RegionStrengths,
		"amount_range_strengths": p.AmountRangeStrengths,
		"case_type_strengths":    p.CaseTypeStrengths,
	} {
		for k, v := range m {
			if v < 0 || v > 1 {
				return fmt.Errorf("capability profile: %s[%s] = %v out of [0,1]", name, k, v)
			}
		}
	}
	return nil
}

// ServesRegion reports whether the organization covers the given region.
// An organization serves a region when it carries any strength entry for it.
func (p *CapabilityProfile) ServesRegion(region string) bool {
	_, ok := p.RegionStrengths[region]
	return ok
}

// RegionStrength returns the strength for region, 0 when absent.
func (p *CapabilityProfile) RegionStrength(region string) float64 {
	return p.RegionStrengths[region]
}

// SpecialtyStrength returns the case-type strength when present, falling back
// to the amount-bucket strength, then 0.
func (p *CapabilityProfile) SpecialtyStrength(caseType string, amount float64) float64 {
	if v, ok := p.CaseTypeStrengths[caseType]; ok {
		return v
	}
	if v, ok := p.AmountRangeStrengths[AmountBucket(amount)]; ok {
		return v
	}
	return 0
}

// CandidateQuery narrows the candidate organization set before eligibility
// filtering runs. Providers may ignore it and return every organization;
// prefiltering is an optimization, never a correctness requirement.
type CandidateQuery struct {
	Region   string
	CaseType string
	Amount   float64
}

// ProfileProvider supplies capability snapshots to the assignment engine.
type ProfileProvider interface {
	// GetProfile returns the capability snapshot for one organization.
	GetProfile(ctx context.Context, orgID common.ID) (*CapabilityProfile, error)
	// ListCandidateOrgIDs returns the ids of organizations worth evaluating
	// for the given package characteristics.
	ListCandidateOrgIDs(ctx context.Context, q CandidateQuery) ([]common.ID, error)
}

// ProfileStore is the persistence contract behind a ProfileProvider.
type ProfileStore interface {
	ProfileProvider
	// SaveProfile upserts a capability snapshot.
	SaveProfile(ctx context.Context, profile *CapabilityProfile) error
}
