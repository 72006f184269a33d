// Package rule defines assignment rules: the declarative eligibility
// conditions, scoring weights, and execution strategy that drive the smart
// assignment engine.
package rule

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// Strategy selects how an assignment rule is executed.
type Strategy string

const (
	// StrategyAuto commits the top recommendation without human review.
	StrategyAuto Strategy = "AUTO"
	// StrategySemiAuto returns ranked recommendations for human approval.
	StrategySemiAuto Strategy = "SEMI_AUTO"
	// StrategyManual commits to a caller-specified organization, cap check only.
	StrategyManual Strategy = "MANUAL"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyAuto, StrategySemiAuto, StrategyManual:
		return true
	}
	return false
}

// AssignmentRule is the aggregate root for one assignment rule.
// UsageCount and SuccessCount are mutated only by the assignment executor on
// commit and outcome reporting.
type AssignmentRule struct {
	ID                   common.ID      `json:"id"`
	Name                 string         `json:"name"`
	RuleType             Strategy       `json:"rule_type"`
	Priority             int            `json:"priority"` // lower value = evaluated first
	Enabled              bool           `json:"enabled"`
	Conditions           Conditions     `json:"conditions"`
	Weights              ScoringWeights `json:"weights"`
	MinMatchingScore     float64        `json:"min_matching_score"`
	MaxAssignmentsPerOrg *int           `json:"max_assignments_per_org,omitempty"`
	NotifyOnMatch        bool           `json:"notify_on_match"`
	UsageCount           int64          `json:"usage_count"`
	SuccessCount         int64          `json:"success_count"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// NewAssignmentRule builds a validated rule with a fresh id and timestamps.
func NewAssignmentRule(name string, ruleType Strategy, priority int, conditions Conditions, weights ScoringWeights) (*AssignmentRule, error) {
	now := time.Now().UTC()
	r := &AssignmentRule{
		ID:         common.ID(uuid.New().String()),
		Name:       name,
		RuleType:   ruleType,
		Priority:   priority,
		Enabled:    true,
		Conditions: conditions,
		Weights:    weights,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate rejects malformed rule definitions. Definition errors are raised
// at create/update time, never during evaluation.
func (r *AssignmentRule) Validate() error {
	if r.Name == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRuleDefinition, "rule name is required")
	}
	if !r.RuleType.Valid() {
		return apperrors.Newf(apperrors.ErrCodeInvalidRuleDefinition, "unknown rule type %q", r.RuleType)
	}
	if err := r.Weights.Validate(); err != nil {
		return err
	}
	if err := r.Conditions.Validate(); err != nil {
		return err
	}
	if r.MinMatchingScore < 0 || r.MinMatchingScore > 100 {
		return apperrors.Newf(apperrors.ErrCodeInvalidRuleDefinition, "min_matching_score %v out of [0,100]", r.MinMatchingScore)
	}
	if r.MaxAssignmentsPerOrg != nil && *r.MaxAssignmentsPerOrg < 1 {
		return apperrors.Newf(apperrors.ErrCodeInvalidRuleDefinition, "max_assignments_per_org must be >= 1, got %d", *r.MaxAssignmentsPerOrg)
	}
	return nil
}
