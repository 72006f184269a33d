package assignment

import (
	"context"
	"sort"
	"sync"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func (s *service) GetRecommendations(ctx context.Context, casePackageID common.ID, limit int) ([]*MatchingAssessment, error) {
	pkg, err := s.packages.Get(ctx, casePackageID)
	if err != nil {
		return nil, err
	}
	return s.recommendForPackage(ctx, pkg, nil, limit)
}

// recommendForPackage ranks eligible organizations for one package. When
// pinned is non-nil only that rule is evaluated; otherwise an organization
// qualifies by passing any enabled rule and is scored with the highest-
// priority rule it passed.
func (s *service) recommendForPackage(ctx context.Context, pkg *casepackage.CasePackage, pinned *rule.AssignmentRule, limit int) ([]*MatchingAssessment, error) {
	var rules []*rule.AssignmentRule
	if pinned != nil {
		rules = []*rule.AssignmentRule{pinned}
	} else {
		var err error
		rules, err = s.rules.ListEnabled(ctx, nil)
		if err != nil {
			return nil, err
		}
	}
	if len(rules) == 0 {
		return nil, nil
	}

	orgIDs, err := s.profiles.ListCandidateOrgIDs(ctx, organization.CandidateQuery{
		Region:   pkg.Region,
		CaseType: pkg.CaseType,
		Amount:   pkg.Amount,
	})
	if err != nil {
		return nil, err
	}

	// Fan out profile reads and scoring, then join before ranking. The slice
	// is index-addressed so workers never contend.
	assessments := make([]*MatchingAssessment, len(orgIDs))
	sem := make(chan struct{}, s.config.ScoringConcurrency)
	var wg sync.WaitGroup

	for i, orgID := range orgIDs {
		wg.Add(1)
		go func(idx int, id common.ID) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			profile, perr := s.profiles.GetProfile(ctx, id)
			if perr != nil {
				s.logger.Warn("candidate profile unavailable",
					logging.String("org_id", string(id)), logging.Err(perr))
				return
			}
			assessments[idx] = s.assessAgainstRules(rules, pkg, profile)
		}(i, orgID)
	}
	wg.Wait()

	ranked := make([]*MatchingAssessment, 0, len(assessments))
	for _, a := range assessments {
		if a != nil {
			ranked = append(ranked, a)
		}
	}
	sortAssessments(ranked)

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// assessAgainstRules scores the organization with the highest-priority rule it
// passes that it also clears the floor of. Rules must arrive priority
// ascending. Returns nil when no rule admits the organization.
func (s *service) assessAgainstRules(rules []*rule.AssignmentRule, pkg *casepackage.CasePackage, profile *organization.CapabilityProfile) *MatchingAssessment {
	for _, r := range rules {
		ok, _ := EvaluateEligibility(r, pkg, profile)
		if !ok {
			continue
		}
		assessment := ScoreMatch(r, pkg, profile)
		if !MeetsFloor(r, assessment) {
			continue
		}
		return assessment
	}
	return nil
}

// sortAssessments orders by score descending with organization id ascending
// as the deterministic tie break.
func sortAssessments(list []*MatchingAssessment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].OverallScore != list[j].OverallScore {
			return list[i].OverallScore > list[j].OverallScore
		}
		return list[i].OrgID < list[j].OrgID
	})
}
