package casepackage

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// CasePackage is the aggregate root for one debt-collection case package.
// Status changes only through ApplyTransition; Version guards concurrent
// writes through the store's compare-and-swap path.
type CasePackage struct {
	ID                common.ID  `json:"id"`
	Name              string     `json:"name"`
	SourceOrgID       common.ID  `json:"source_org_id"`
	Region            string     `json:"region"`
	City              string     `json:"city,omitempty"`
	Amount            float64    `json:"amount"`
	CaseCount         int        `json:"case_count"`
	CaseType          string     `json:"case_type"`
	Status            Status     `json:"status"`
	DisposalOrgID     *common.ID `json:"disposal_org_id,omitempty"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewCasePackage builds a package in DRAFT with a fresh id.
func NewCasePackage(name string, sourceOrgID common.ID, region, caseType string, amount float64) (*CasePackage, error) {
	if name == "" {
		return nil, apperrors.NewValidation("case package name is required")
	}
	if sourceOrgID == "" {
		return nil, apperrors.NewValidation("source organization id is required")
	}
	if amount < 0 {
		return nil, apperrors.NewValidation("case package amount must be non-negative, got %v", amount)
	}
	now := time.Now().UTC()
	return &CasePackage{
		ID:          common.ID(uuid.New().String()),
		Name:        name,
		SourceOrgID: sourceOrgID,
		Region:      region,
		Amount:      amount,
		CaseType:    caseType,
		Status:      StatusDraft,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanTransition reports whether the package may move to target under event.
func (p *CasePackage) CanTransition(target Status, event Event) bool {
	return IsValidTransition(p.Status, target, event)
}

// ApplyTransition moves the package to target, validating the transition
// against the state machine. It mutates only in-memory state; persistence and
// version CAS are the store's concern.
func (p *CasePackage) ApplyTransition(target Status, event Event) error {
	if !IsValidTransition(p.Status, target, event) {
		return apperrors.Newf(apperrors.ErrCodeInvalidStatusTransition,
			"transition %s -> %s under event %s is not allowed", p.Status, target, event)
	}
	p.Status = target
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Assign records the disposal organization and moves the package to ASSIGNED.
func (p *CasePackage) Assign(orgID common.ID) error {
	if err := p.ApplyTransition(StatusAssigned, EventAssigned); err != nil {
		return err
	}
	p.DisposalOrgID = &orgID
	return nil
}
