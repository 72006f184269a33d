package rule

import (
	"context"

	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// ListFilter narrows rule listings.
type ListFilter struct {
	// RuleType restricts the listing to one strategy; nil means all types.
	RuleType *Strategy
	// EnabledOnly drops disabled rules from the result.
	EnabledOnly bool
	Pagination  *common.Pagination
}

// Repository is the persistence contract for assignment rules.
//
// ListEnabled returns enabled rules ordered by priority ascending, ties broken
// by id ascending, so rule evaluation order is deterministic.
type Repository interface {
	Create(ctx context.Context, r *AssignmentRule) error
	Update(ctx context.Context, r *AssignmentRule) error
	// Delete removes the rule permanently.
	Delete(ctx context.Context, id common.ID) error
	GetByID(ctx context.Context, id common.ID) (*AssignmentRule, error)
	List(ctx context.Context, filter ListFilter) ([]*AssignmentRule, int64, error)
	ListEnabled(ctx context.Context, ruleType *Strategy) ([]*AssignmentRule, error)

	// IncrementUsage atomically bumps the rule's usage counter, and the
	// success counter as well when success is true. Concurrent increments
	// must not lose updates.
	IncrementUsage(ctx context.Context, id common.ID, success bool) error

	// AssignmentCount returns how many assignments this rule has committed to
	// the given organization. Used by the per-organization cap check; reads
	// the freshest value available, not a serialized one.
	AssignmentCount(ctx context.Context, ruleID, orgID common.ID) (int64, error)

	// RecordAssignment registers one committed assignment of ruleID to orgID.
	RecordAssignment(ctx context.Context, ruleID, orgID common.ID) error
}
