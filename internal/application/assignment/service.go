package assignment

import (
	"context"
	"time"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// Service exposes the smart assignment engine.
type Service interface {
	// GetRecommendations ranks eligible organizations for one package,
	// descending by score with organization id as the tie break.
	// limit <= 0 means no limit.
	GetRecommendations(ctx context.Context, casePackageID common.ID, limit int) ([]*MatchingAssessment, error)

	// AssessMatching scores one explicit (organization, package) pair using
	// the highest-priority enabled rule the pair passes.
	AssessMatching(ctx context.Context, orgID, casePackageID common.ID) (*MatchingAssessment, error)

	// ExecuteAutoAssignment commits the top recommendation for the package.
	// A nil ruleID evaluates every enabled rule.
	ExecuteAutoAssignment(ctx context.Context, casePackageID common.ID, ruleID *common.ID) (*AssignmentResult, error)

	// ExecuteManualAssignment commits directly to the given organization,
	// bypassing scoring; only the per-organization cap is checked.
	ExecuteManualAssignment(ctx context.Context, casePackageID, orgID common.ID, ruleID *common.ID, operator *Operator) (*AssignmentResult, error)

	// ExecuteBatchAssignment runs every item independently and reports one
	// typed outcome per item, preserving input order.
	ExecuteBatchAssignment(ctx context.Context, req *BatchAssignmentRequest) (*BatchAssignmentResponse, error)

	// TestRule dry-runs one rule against one package. No counter or status
	// mutation ever happens.
	TestRule(ctx context.Context, ruleID, casePackageID common.ID) (*RuleTestResult, error)

	CreateRule(ctx context.Context, r *rule.AssignmentRule) error
	UpdateRule(ctx context.Context, r *rule.AssignmentRule) error
	DeleteRule(ctx context.Context, id common.ID) error
	GetRule(ctx context.Context, id common.ID) (*rule.AssignmentRule, error)
	ListRules(ctx context.Context, filter rule.ListFilter) ([]*rule.AssignmentRule, int64, error)

	// GetAssignmentStatistics aggregates assignment outcomes over a date
	// range, optionally restricted to one organization.
	GetAssignmentStatistics(ctx context.Context, req *StatisticsRequest) (*AssignmentStatistics, error)
}

// Config holds the engine's tunables.
type Config struct {
	// ScoringConcurrency bounds the fan-out when scoring candidates for one
	// package.
	ScoringConcurrency int
	// BatchConcurrency bounds how many batch items run in parallel.
	BatchConcurrency int
	// DefaultRecommendationLimit applies when a caller passes limit 0 through
	// surfaces that treat 0 as "use default". Zero or negative disables it.
	DefaultRecommendationLimit int
}

const defaultConcurrency = 8

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		ScoringConcurrency: defaultConcurrency,
		BatchConcurrency:   defaultConcurrency,
	}
}

type service struct {
	rules     rule.Repository
	packages  casepackage.Store
	flows     casepackage.FlowStore
	profiles  organization.ProfileProvider
	stats     StatisticsStore
	sink      NotificationSink
	publisher EventPublisher
	logger    logging.Logger
	config    *Config
}

// NewService wires the assignment engine. Nil sink, publisher, and stats
// collaborators degrade to no-ops so tests and partial deployments stay
// simple.
func NewService(
	rules rule.Repository,
	packages casepackage.Store,
	flows casepackage.FlowStore,
	profiles organization.ProfileProvider,
	stats StatisticsStore,
	sink NotificationSink,
	publisher EventPublisher,
	logger logging.Logger,
	config *Config,
) Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ScoringConcurrency <= 0 {
		config.ScoringConcurrency = defaultConcurrency
	}
	if config.BatchConcurrency <= 0 {
		config.BatchConcurrency = defaultConcurrency
	}
	if sink == nil {
		sink = NewNoopNotificationSink()
	}
	if publisher == nil {
		publisher = NewNoopEventPublisher()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{
		rules:     rules,
		packages:  packages,
		flows:     flows,
		profiles:  profiles,
		stats:     stats,
		sink:      sink,
		publisher: publisher,
		logger:    logger.Named("assignment"),
		config:    config,
	}
}

func (s *service) CreateRule(ctx context.Context, r *rule.AssignmentRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.rules.Create(ctx, r); err != nil {
		return err
	}
	s.logger.Info("assignment rule created",
		logging.String("rule_id", string(r.ID)),
		logging.String("rule_type", string(r.RuleType)),
		logging.Int("priority", r.Priority))
	return nil
}

func (s *service) UpdateRule(ctx context.Context, r *rule.AssignmentRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if _, err := s.rules.GetByID(ctx, r.ID); err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	if err := s.rules.Update(ctx, r); err != nil {
		return err
	}
	s.logger.Info("assignment rule updated", logging.String("rule_id", string(r.ID)))
	return nil
}

func (s *service) DeleteRule(ctx context.Context, id common.ID) error {
	if _, err := s.rules.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("assignment rule deleted", logging.String("rule_id", string(id)))
	return nil
}

func (s *service) GetRule(ctx context.Context, id common.ID) (*rule.AssignmentRule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *service) ListRules(ctx context.Context, filter rule.ListFilter) ([]*rule.AssignmentRule, int64, error) {
	return s.rules.List(ctx, filter)
}

func (s *service) AssessMatching(ctx context.Context, orgID, casePackageID common.ID) (*MatchingAssessment, error) {
	pkg, err := s.packages.Get(ctx, casePackageID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, orgID)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.ListEnabled(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Rules arrive priority ascending; the first passing rule wins.
	for _, r := range rules {
		if ok, _ := EvaluateEligibility(r, pkg, profile); ok {
			return ScoreMatch(r, pkg, profile), nil
		}
	}
	return nil, apperrors.Newf(apperrors.ErrCodeNoEligibleOrganization,
		"organization %s passes no enabled rule for package %s", orgID, casePackageID)
}

func (s *service) TestRule(ctx context.Context, ruleID, casePackageID common.ID) (*RuleTestResult, error) {
	r, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	pkg, err := s.packages.Get(ctx, casePackageID)
	if err != nil {
		return nil, err
	}

	orgIDs, err := s.profiles.ListCandidateOrgIDs(ctx, organization.CandidateQuery{
		Region:   pkg.Region,
		CaseType: pkg.CaseType,
		Amount:   pkg.Amount,
	})
	if err != nil {
		return nil, err
	}

	result := &RuleTestResult{
		RuleID:        ruleID,
		CasePackageID: casePackageID,
		Rejections:    make(map[common.ID][]string),
		TestedAt:      time.Now().UTC(),
	}
	for _, orgID := range orgIDs {
		profile, perr := s.profiles.GetProfile(ctx, orgID)
		if perr != nil {
			s.logger.Warn("skipping candidate without profile",
				logging.String("org_id", string(orgID)), logging.Err(perr))
			continue
		}
		ok, unmatched := EvaluateEligibility(r, pkg, profile)
		if !ok {
			result.Rejections[orgID] = unmatched
			continue
		}
		assessment := ScoreMatch(r, pkg, profile)
		if !MeetsFloor(r, assessment) {
			result.Rejections[orgID] = []string{"below_min_matching_score"}
			continue
		}
		result.Assessments = append(result.Assessments, assessment)
	}
	sortAssessments(result.Assessments)
	return result, nil
}

func (s *service) GetAssignmentStatistics(ctx context.Context, req *StatisticsRequest) (*AssignmentStatistics, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.stats == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotImplemented, "statistics store not configured")
	}
	out, err := s.stats.AssignmentStatistics(ctx, req.OrgID, req.DateRange)
	if err != nil {
		return nil, err
	}
	out.ComputedAt = time.Now().UTC()
	return out, nil
}
