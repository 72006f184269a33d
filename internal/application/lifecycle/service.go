// Package lifecycle drives case packages through their state machine and
// exposes the flow audit trail. Every status change is validated against the
// transition table, version-guarded, and recorded as an immutable flow entry.
package lifecycle

import (
	"context"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// Operator identifies the human behind a lifecycle action; nil means system.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreatePackageRequest carries the fields needed to open a new package.
type CreatePackageRequest struct {
	Name        string    `json:"name"`
	SourceOrgID common.ID `json:"source_org_id"`
	Region      string    `json:"region"`
	City        string    `json:"city,omitempty"`
	CaseType    string    `json:"case_type"`
	Amount      float64   `json:"amount"`
	CaseCount   int       `json:"case_count"`
}

// FlowPublisher pushes flow records to the message broker.
type FlowPublisher interface {
	PublishFlowRecord(ctx context.Context, rec *casepackage.FlowRecord) error
}

type noopPublisher struct{}

func (noopPublisher) PublishFlowRecord(context.Context, *casepackage.FlowRecord) error { return nil }

// Service exposes case-package lifecycle operations.
//
// The expectedVersion on every transition is the version the caller last
// read; a zero value means "whatever is current", which trades away the
// optimistic-concurrency guarantee for convenience in single-writer flows.
type Service interface {
	CreatePackage(ctx context.Context, req *CreatePackageRequest) (*casepackage.CasePackage, error)
	GetPackage(ctx context.Context, id common.ID) (*casepackage.CasePackage, error)
	ListPackages(ctx context.Context, filter casepackage.ListFilter) ([]*casepackage.CasePackage, int64, error)

	Publish(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error)
	Withdraw(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error)
	Start(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error)
	Complete(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error)
	Cancel(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error)

	// FlowHistory lists the package's audit trail, newest first.
	FlowHistory(ctx context.Context, pkgID common.ID, filter casepackage.FlowFilter) ([]*casepackage.FlowRecord, int64, error)
}

type service struct {
	packages  casepackage.Store
	flows     casepackage.FlowStore
	publisher FlowPublisher
	logger    logging.Logger
}

// NewService wires the lifecycle service. A nil publisher degrades to a no-op.
func NewService(packages casepackage.Store, flows casepackage.FlowStore, publisher FlowPublisher, logger logging.Logger) Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{
		packages:  packages,
		flows:     flows,
		publisher: publisher,
		logger:    logger.Named("lifecycle"),
	}
}

func (s *service) CreatePackage(ctx context.Context, req *CreatePackageRequest) (*casepackage.CasePackage, error) {
	if req == nil {
		return nil, apperrors.NewValidation("create package request is required")
	}
	pkg, err := casepackage.NewCasePackage(req.Name, req.SourceOrgID, req.Region, req.CaseType, req.Amount)
	if err != nil {
		return nil, err
	}
	pkg.City = req.City
	pkg.CaseCount = req.CaseCount
	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, err
	}

	rec := casepackage.NewSystemRecord(pkg.ID, "package.created", casepackage.SeverityInfo, "")
	if err := s.flows.Append(ctx, rec); err != nil {
		s.logger.Warn("failed to append creation flow record",
			logging.String("case_package_id", string(pkg.ID)), logging.Err(err))
	}

	s.logger.Info("case package created",
		logging.String("case_package_id", string(pkg.ID)),
		logging.String("region", pkg.Region),
		logging.Float64("amount", pkg.Amount))
	return pkg, nil
}

func (s *service) GetPackage(ctx context.Context, id common.ID) (*casepackage.CasePackage, error) {
	return s.packages.Get(ctx, id)
}

func (s *service) ListPackages(ctx context.Context, filter casepackage.ListFilter) ([]*casepackage.CasePackage, int64, error) {
	return s.packages.List(ctx, filter)
}

func (s *service) Publish(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error) {
	return s.transition(ctx, id, expectedVersion, casepackage.StatusPublished, casepackage.EventPublished, op)
}

func (s *service) Withdraw(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error) {
	return s.transition(ctx, id, expectedVersion, casepackage.StatusWithdrawn, casepackage.EventWithdrawn, op)
}

func (s *service) Start(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error) {
	return s.transition(ctx, id, expectedVersion, casepackage.StatusInProgress, casepackage.EventStarted, op)
}

func (s *service) Complete(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error) {
	return s.transition(ctx, id, expectedVersion, casepackage.StatusCompleted, casepackage.EventCompleted, op)
}

func (s *service) Cancel(ctx context.Context, id common.ID, expectedVersion int64, op *Operator) (*casepackage.CasePackage, error) {
	return s.transition(ctx, id, expectedVersion, casepackage.StatusCancelled, casepackage.EventCancelled, op)
}

// transition applies one validated status change under version CAS together
// with its flow record.
func (s *service) transition(ctx context.Context, id common.ID, expectedVersion int64, target casepackage.Status, event casepackage.Event, op *Operator) (*casepackage.CasePackage, error) {
	pkg, err := s.packages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion <= 0 {
		expectedVersion = pkg.Version
	}
	if !pkg.CanTransition(target, event) {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidStatusTransition,
			"transition %s -> %s under event %s is not allowed", pkg.Status, target, event)
	}

	var operatorID, operatorName *string
	if op != nil {
		operatorID, operatorName = &op.ID, &op.Name
	}
	rec := casepackage.NewStatusChangeRecord(pkg.ID, event, pkg.Status, target, pkg.Amount, operatorID, operatorName)

	if err := s.packages.UpdateStatus(ctx, id, expectedVersion, target, rec); err != nil {
		return nil, err
	}
	if err := s.publisher.PublishFlowRecord(ctx, rec); err != nil {
		s.logger.Warn("failed to publish flow record",
			logging.String("case_package_id", string(id)), logging.Err(err))
	}

	s.logger.Info("case package status changed",
		logging.String("case_package_id", string(id)),
		logging.String("from", string(pkg.Status)),
		logging.String("to", string(target)),
		logging.String("event", string(event)))
	return s.packages.Get(ctx, id)
}

func (s *service) FlowHistory(ctx context.Context, pkgID common.ID, filter casepackage.FlowFilter) ([]*casepackage.FlowRecord, int64, error) {
	if _, err := s.packages.Get(ctx, pkgID); err != nil {
		return nil, 0, err
	}
	return s.flows.ListByPackage(ctx, pkgID, filter)
}
