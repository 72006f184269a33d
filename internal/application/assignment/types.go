// Package assignment orchestrates the smart assignment engine: eligibility
// filtering, multi-factor weighted scoring, recommendation generation, and
// assignment execution across auto, semi-auto, and manual strategies.
package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// Unmatched-criteria labels reported by the eligibility filter.
const (
	UnmatchedRegion      = "region"
	UnmatchedAmountRange = "amount_range"
	UnmatchedCaseType    = "case_type"
	UnmatchedExcluded    = "excluded"
	UnmatchedNotIncluded = "not_included"
)

// SubScores carries the per-dimension sub-scores of one assessment, each in
// [0,1].
type SubScores struct {
	Region      float64 `json:"region"`
	Performance float64 `json:"performance"`
	Load        float64 `json:"load"`
	Specialty   float64 `json:"specialty"`
}

// Get returns the sub-score for a dimension.
func (s SubScores) Get(d rule.Dimension) float64 {
	switch d {
	case rule.DimensionRegion:
		return s.Region
	case rule.DimensionPerformance:
		return s.Performance
	case rule.DimensionLoad:
		return s.Load
	case rule.DimensionSpecialty:
		return s.Specialty
	}
	return 0
}

// MatchingAssessment is the ephemeral result of scoring one (organization,
// package) pair. It is constructed fresh on every request and never persisted.
type MatchingAssessment struct {
	OrgID          common.ID  `json:"org_id"`
	OrgName        string     `json:"org_name"`
	CasePackageID  common.ID  `json:"case_package_id"`
	RuleID         common.ID  `json:"rule_id"`
	OverallScore   float64    `json:"overall_score"`
	SubScores      SubScores  `json:"sub_scores"`
	Strengths      []string   `json:"strengths"`
	Weaknesses     []string   `json:"weaknesses"`
	Recommendation string     `json:"recommendation"`
}

// Operator identifies the human behind a manual action; nil means system.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssignmentResult is the outcome of one committed (or attempted) assignment.
type AssignmentResult struct {
	CasePackageID common.ID  `json:"case_package_id"`
	OrgID         common.ID  `json:"org_id"`
	RuleID        common.ID  `json:"rule_id,omitempty"`
	Score         float64    `json:"score"`
	Strategy      rule.Strategy `json:"strategy"`
	AssignedAt    time.Time  `json:"assigned_at"`
}

// BatchItem is one entry of a batch assignment request. OrgID is required for
// the MANUAL strategy and ignored otherwise.
type BatchItem struct {
	CasePackageID common.ID  `json:"case_package_id"`
	OrgID         *common.ID `json:"org_id,omitempty"`
}

// BatchAssignmentRequest asks for N independent assignment executions. AUTO
// and MANUAL batches commit per item; SEMI_AUTO batches return each item's
// ranked recommendations for later operator confirmation.
type BatchAssignmentRequest struct {
	Items    []BatchItem   `json:"items"`
	Strategy rule.Strategy `json:"strategy"`
	// RuleID pins execution to one rule; nil means evaluate all enabled rules.
	RuleID   *common.ID `json:"rule_id,omitempty"`
	Operator *Operator  `json:"operator,omitempty"`
}

// Validate checks the request shape.
func (r *BatchAssignmentRequest) Validate() error {
	if len(r.Items) == 0 {
		return apperrors.NewValidation("batch assignment requires at least one item")
	}
	switch r.Strategy {
	case rule.StrategyAuto, rule.StrategySemiAuto, rule.StrategyManual:
	default:
		return apperrors.Newf(apperrors.ErrCodeUnsupportedStrategy, "unknown strategy %q", r.Strategy)
	}
	if r.Strategy == rule.StrategyManual {
		for i, it := range r.Items {
			if it.OrgID == nil || *it.OrgID == "" {
				return apperrors.NewValidation("item %d: MANUAL strategy requires an organization id", i)
			}
		}
	}
	return nil
}

// BatchItemResult is the typed outcome of one batch item. AUTO and MANUAL
// items carry the committed OrgID and Score; SEMI_AUTO items carry the ranked
// recommendation list instead and commit nothing. A SEMI_AUTO item with no
// eligible organization succeeds with an empty list.
type BatchItemResult struct {
	CasePackageID   common.ID             `json:"case_package_id"`
	Success         bool                  `json:"success"`
	OrgID           *common.ID            `json:"org_id,omitempty"`
	Score           *float64              `json:"score,omitempty"`
	Recommendations []*MatchingAssessment `json:"recommendations,omitempty"`
	ErrorCode       string                `json:"error_code,omitempty"`
	Reason          string                `json:"reason,omitempty"`
}

// BatchAssignmentResponse reports per-item outcomes in the caller's input
// order. SuccessCount+FailedCount always equals len(Results).
type BatchAssignmentResponse struct {
	Results      []BatchItemResult `json:"results"`
	Total        int               `json:"total"`
	SuccessCount int               `json:"success_count"`
	FailedCount  int               `json:"failed_count"`
	CompletedAt  time.Time         `json:"completed_at"`
}

// RuleTestResult is the dry-run outcome of testing a rule against a package.
// Computing it never mutates counters or package state.
type RuleTestResult struct {
	RuleID        common.ID             `json:"rule_id"`
	CasePackageID common.ID             `json:"case_package_id"`
	Assessments   []*MatchingAssessment `json:"assessments"`
	// Rejections maps organization id to its unmatched-criteria labels.
	Rejections map[common.ID][]string `json:"rejections"`
	TestedAt   time.Time              `json:"tested_at"`
}

// StatisticsRequest narrows an assignment-statistics query.
type StatisticsRequest struct {
	OrgID     *common.ID       `json:"org_id,omitempty"`
	DateRange common.DateRange `json:"date_range"`
}

// Validate checks the request shape.
func (r *StatisticsRequest) Validate() error {
	if err := r.DateRange.Validate(); err != nil {
		return apperrors.NewValidation("invalid date range: %v", err)
	}
	return nil
}

// AssignmentStatistics aggregates historical assignment outcomes.
type AssignmentStatistics struct {
	OrgID          *common.ID `json:"org_id,omitempty"`
	TotalAssigned  int64      `json:"total_assigned"`
	TotalCompleted int64      `json:"total_completed"`
	TotalCancelled int64      `json:"total_cancelled"`
	TotalWithdrawn int64      `json:"total_withdrawn"`
	TotalAmount    float64    `json:"total_amount"`
	SuccessRate    float64    `json:"success_rate"`
	ComputedAt     time.Time  `json:"computed_at"`
}

// StatisticsStore answers aggregate queries over the flow audit trail.
type StatisticsStore interface {
	AssignmentStatistics(ctx context.Context, orgID *common.ID, dateRange common.DateRange) (*AssignmentStatistics, error)
}

// NotificationSink receives match notifications for rules with NotifyOnMatch
// set. Delivery is fire-and-forget; a sink failure never rolls back an
// assignment commit.
type NotificationSink interface {
	NotifyMatch(ctx context.Context, r *rule.AssignmentRule, assessment *MatchingAssessment) error
}

// EventPublisher pushes flow records and match events to the message broker.
type EventPublisher interface {
	PublishFlowRecord(ctx context.Context, rec *casepackage.FlowRecord) error
	PublishMatch(ctx context.Context, ruleID, orgID, casePackageID common.ID, score float64) error
}

// ProfileCache caches serialized capability profiles.
type ProfileCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type noopSink struct{}

func (noopSink) NotifyMatch(context.Context, *rule.AssignmentRule, *MatchingAssessment) error {
	return nil
}

// NewNoopNotificationSink returns a sink that drops every notification.
func NewNoopNotificationSink() NotificationSink { return noopSink{} }

type noopPublisher struct{}

func (noopPublisher) PublishFlowRecord(context.Context, *casepackage.FlowRecord) error { return nil }
func (noopPublisher) PublishMatch(context.Context, common.ID, common.ID, common.ID, float64) error {
	return nil
}

// NewNoopEventPublisher returns a publisher that drops every event.
func NewNoopEventPublisher() EventPublisher { return noopPublisher{} }

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, error) { return nil, fmt.Errorf("cache miss") }
func (noopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, string) error                     { return nil }

// NewNoopProfileCache returns a cache that always misses.
func NewNoopProfileCache() ProfileCache { return noopCache{} }
