package assignment

import (
	"context"
	"time"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func (s *service) ExecuteAutoAssignment(ctx context.Context, casePackageID common.ID, ruleID *common.ID) (*AssignmentResult, error) {
	pkg, err := s.packages.Get(ctx, casePackageID)
	if err != nil {
		return nil, err
	}

	var pinned *rule.AssignmentRule
	if ruleID != nil {
		pinned, err = s.rules.GetByID(ctx, *ruleID)
		if err != nil {
			return nil, err
		}
		if !pinned.Enabled {
			return nil, apperrors.Newf(apperrors.ErrCodeRuleDisabled, "rule %s is disabled", *ruleID)
		}
	}

	ranked, err := s.recommendForPackage(ctx, pkg, pinned, 1)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		// A failed pinned-rule attempt still counts as rule usage.
		if pinned != nil {
			if cerr := s.rules.IncrementUsage(ctx, pinned.ID, false); cerr != nil {
				s.logger.Error("failed to record rule usage", logging.Err(cerr))
			}
		}
		return nil, apperrors.Newf(apperrors.ErrCodeNoEligibleOrganization,
			"no eligible organization for package %s", casePackageID)
	}

	top := ranked[0]
	winning := pinned
	if winning == nil {
		winning, err = s.rules.GetByID(ctx, top.RuleID)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.commit(ctx, pkg, winning, top.OrgID, top.OverallScore, rule.StrategyAuto, nil)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeCapacityExceeded) {
			if cerr := s.rules.IncrementUsage(ctx, winning.ID, false); cerr != nil {
				s.logger.Error("failed to record rule usage", logging.Err(cerr))
			}
		}
		return nil, err
	}
	return result, nil
}

func (s *service) ExecuteManualAssignment(ctx context.Context, casePackageID, orgID common.ID, ruleID *common.ID, operator *Operator) (*AssignmentResult, error) {
	pkg, err := s.packages.Get(ctx, casePackageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetProfile(ctx, orgID); err != nil {
		return nil, err
	}

	var r *rule.AssignmentRule
	if ruleID != nil {
		r, err = s.rules.GetByID(ctx, *ruleID)
		if err != nil {
			return nil, err
		}
	}

	// MANUAL bypasses eligibility and scoring entirely; the cap check inside
	// commit is the only guard.
	return s.commit(ctx, pkg, r, orgID, 0, rule.StrategyManual, operator)
}

// commit performs the atomic assignment unit: cap check, status transition
// with flow record under version CAS, then counters and events. A rejected
// transition or stale version aborts everything with no counter mutation.
func (s *service) commit(ctx context.Context, pkg *casepackage.CasePackage, r *rule.AssignmentRule, orgID common.ID, score float64, strategy rule.Strategy, operator *Operator) (*AssignmentResult, error) {
	if !pkg.CanTransition(casepackage.StatusAssigned, casepackage.EventAssigned) {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidStatusTransition,
			"package %s in status %s cannot be assigned", pkg.ID, pkg.Status)
	}

	if r != nil && r.MaxAssignmentsPerOrg != nil {
		count, err := s.rules.AssignmentCount(ctx, r.ID, orgID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*r.MaxAssignmentsPerOrg) {
			return nil, apperrors.Newf(apperrors.ErrCodeCapacityExceeded,
				"organization %s reached the cap of %d assignments for rule %s",
				orgID, *r.MaxAssignmentsPerOrg, r.ID)
		}
	}

	var operatorID, operatorName *string
	if operator != nil {
		operatorID, operatorName = &operator.ID, &operator.Name
	}
	rec := casepackage.NewStatusChangeRecord(
		pkg.ID, casepackage.EventAssigned, pkg.Status, casepackage.StatusAssigned,
		pkg.Amount, operatorID, operatorName)

	if err := s.packages.CommitAssignment(ctx, pkg.ID, pkg.Version, orgID, rec); err != nil {
		return nil, err
	}

	var ruleID common.ID
	if r != nil {
		ruleID = r.ID
		if err := s.rules.IncrementUsage(ctx, r.ID, true); err != nil {
			s.logger.Error("failed to increment rule counters",
				logging.String("rule_id", string(r.ID)), logging.Err(err))
		}
		if err := s.rules.RecordAssignment(ctx, r.ID, orgID); err != nil {
			s.logger.Error("failed to record rule assignment",
				logging.String("rule_id", string(r.ID)), logging.Err(err))
		}
	}

	if err := s.publisher.PublishFlowRecord(ctx, rec); err != nil {
		s.logger.Warn("failed to publish flow record", logging.Err(err))
	}
	if err := s.publisher.PublishMatch(ctx, ruleID, orgID, pkg.ID, score); err != nil {
		s.logger.Warn("failed to publish match event", logging.Err(err))
	}

	if r != nil && r.NotifyOnMatch {
		assessment := &MatchingAssessment{
			OrgID:         orgID,
			CasePackageID: pkg.ID,
			RuleID:        r.ID,
			OverallScore:  score,
		}
		notifyCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.sink.NotifyMatch(notifyCtx, r, assessment); err != nil {
				s.logger.Warn("match notification failed",
					logging.String("rule_id", string(r.ID)), logging.Err(err))
			}
		}()
	}

	s.logger.Info("assignment committed",
		logging.String("case_package_id", string(pkg.ID)),
		logging.String("org_id", string(orgID)),
		logging.String("strategy", string(strategy)),
		logging.Float64("score", score))

	return &AssignmentResult{
		CasePackageID: pkg.ID,
		OrgID:         orgID,
		RuleID:        ruleID,
		Score:         score,
		Strategy:      strategy,
		AssignedAt:    time.Now().UTC(),
	}, nil
}
