package casepackage

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// FlowCategory tags the kind of flow record.
type FlowCategory string

const (
	FlowCategoryPackage   FlowCategory = "PACKAGE"
	FlowCategoryCase      FlowCategory = "CASE"
	FlowCategorySystem    FlowCategory = "SYSTEM"
	FlowCategoryFinancial FlowCategory = "FINANCIAL"
)

// FlowSeverity grades the operational weight of a flow record.
type FlowSeverity string

const (
	SeverityInfo     FlowSeverity = "INFO"
	SeverityWarning  FlowSeverity = "WARNING"
	SeverityCritical FlowSeverity = "CRITICAL"
)

// FlowRecord is one immutable entry in the case flow audit trail. Records are
// created once and never mutated or deleted by the engine.
type FlowRecord struct {
	ID            common.ID    `json:"id"`
	CasePackageID common.ID    `json:"case_package_id"`
	CaseID        *common.ID   `json:"case_id,omitempty"`
	Category      FlowCategory `json:"category"`
	EventType     string       `json:"event_type"`
	EventTime     time.Time    `json:"event_time"`
	OperatorID    *string      `json:"operator_id,omitempty"`
	OperatorName  *string      `json:"operator_name,omitempty"`
	BeforeStatus  *Status      `json:"before_status,omitempty"`
	AfterStatus   *Status      `json:"after_status,omitempty"`
	Amount        *float64     `json:"amount,omitempty"`
	Severity      FlowSeverity `json:"severity"`
	Remark        string       `json:"remark,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// NewStatusChangeRecord builds a package-category record for one status
// transition. A nil operator marks a system-triggered transition.
func NewStatusChangeRecord(pkgID common.ID, event Event, before, after Status, amount float64, operatorID, operatorName *string) *FlowRecord {
	now := time.Now().UTC()
	return &FlowRecord{
		ID:            common.ID(uuid.New().String()),
		CasePackageID: pkgID,
		Category:      FlowCategoryPackage,
		EventType:     string(event),
		EventTime:     now,
		OperatorID:    operatorID,
		OperatorName:  operatorName,
		BeforeStatus:  &before,
		AfterStatus:   &after,
		Amount:        &amount,
		Severity:      SeverityInfo,
		CreatedAt:     now,
	}
}

// NewSystemRecord builds a system-category record with no operator.
func NewSystemRecord(pkgID common.ID, eventType string, severity FlowSeverity, remark string) *FlowRecord {
	now := time.Now().UTC()
	return &FlowRecord{
		ID:            common.ID(uuid.New().String()),
		CasePackageID: pkgID,
		Category:      FlowCategorySystem,
		EventType:     eventType,
		EventTime:     now,
		Severity:      severity,
		Remark:        remark,
		CreatedAt:     now,
	}
}

// NewFinancialRecord builds a financial-category record carrying an amount.
func NewFinancialRecord(pkgID common.ID, caseID *common.ID, eventType string, amount float64, operatorID, operatorName *string) *FlowRecord {
	now := time.Now().UTC()
	return &FlowRecord{
		ID:            common.ID(uuid.New().String()),
		CasePackageID: pkgID,
		CaseID:        caseID,
		Category:      FlowCategoryFinancial,
		EventType:     eventType,
		EventTime:     now,
		OperatorID:    operatorID,
		OperatorName:  operatorName,
		Amount:        &amount,
		Severity:      SeverityInfo,
		CreatedAt:     now,
	}
}

// Validate rejects structurally incomplete flow records.
func (r *FlowRecord) Validate() error {
	if r.CasePackageID == "" {
		return apperrors.New(apperrors.ErrCodeFlowInvalidRecord, "flow record requires a case package id")
	}
	if r.EventType == "" {
		return apperrors.New(apperrors.ErrCodeFlowInvalidRecord, "flow record requires an event type")
	}
	switch r.Category {
	case FlowCategoryPackage, FlowCategoryCase, FlowCategorySystem, FlowCategoryFinancial:
	default:
		return apperrors.Newf(apperrors.ErrCodeFlowInvalidRecord, "unknown flow category %q", r.Category)
	}
	if (r.BeforeStatus == nil) != (r.AfterStatus == nil) {
		return apperrors.New(apperrors.ErrCodeFlowInvalidRecord, "before and after status must both be set or both be empty")
	}
	return nil
}
