package casepackage

import (
	"context"

	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// ListFilter narrows case-package listings.
type ListFilter struct {
	Status      *Status
	SourceOrgID *common.ID
	Region      string
	Pagination  *common.Pagination
}

// Store is the persistence contract for case packages.
//
// All status writes are version-guarded: a write that observes a stale
// version fails with ErrCodeConcurrentModification and mutates nothing.
type Store interface {
	Create(ctx context.Context, p *CasePackage) error
	Get(ctx context.Context, id common.ID) (*CasePackage, error)
	List(ctx context.Context, filter ListFilter) ([]*CasePackage, int64, error)

	// CommitAssignment atomically sets the disposal organization, moves the
	// package to ASSIGNED, bumps the version, and appends the flow record,
	// iff the stored version still equals expectedVersion. Either everything
	// is persisted or nothing is.
	CommitAssignment(ctx context.Context, id common.ID, expectedVersion int64, orgID common.ID, rec *FlowRecord) error

	// UpdateStatus applies a validated status change together with its flow
	// record under the same compare-and-swap discipline as CommitAssignment.
	// When the transition clears the assignment (withdrawal), the disposal
	// organization is reset.
	UpdateStatus(ctx context.Context, id common.ID, expectedVersion int64, newStatus Status, rec *FlowRecord) error
}

// FlowFilter narrows flow-record listings.
type FlowFilter struct {
	Category   *FlowCategory
	EventType  string
	DateRange  *common.DateRange
	Pagination *common.Pagination
}

// FlowStore is the append-only persistence contract for the audit trail.
type FlowStore interface {
	// Append persists one immutable flow record.
	Append(ctx context.Context, rec *FlowRecord) error
	// ListByPackage returns records for one package, newest first.
	ListByPackage(ctx context.Context, pkgID common.ID, filter FlowFilter) ([]*FlowRecord, int64, error)
}
