package assignment

import (
	"fmt"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
)

// Sub-score thresholds for deriving strengths and weaknesses.
const (
	strengthThreshold = 0.75
	weaknessThreshold = 0.40
)

// ScoreMatch computes the weighted match score for one (organization, package)
// pair under one rule. The result is deterministic: identical inputs always
// produce the identical assessment, with no randomness or wall-clock
// dependence in the score itself.
func ScoreMatch(r *rule.AssignmentRule, pkg *casepackage.CasePackage, profile *organization.CapabilityProfile) *MatchingAssessment {
	sub := SubScores{
		Region:      profile.RegionStrength(pkg.Region),
		Performance: profile.AverageSuccessRate,
		Load:        clamp01(1 - profile.CurrentLoad),
		Specialty:   profile.SpecialtyStrength(pkg.CaseType, pkg.Amount),
	}

	weights := r.Weights.Normalize()
	overall := 0.0
	for _, d := range rule.Dimensions {
		overall += weights.Get(d) * sub.Get(d)
	}
	overall *= 100

	assessment := &MatchingAssessment{
		OrgID:         profile.OrgID,
		OrgName:       profile.OrgName,
		CasePackageID: pkg.ID,
		RuleID:        r.ID,
		OverallScore:  overall,
		SubScores:     sub,
	}
	assessment.Strengths, assessment.Weaknesses = deriveStrengths(sub, weights)
	assessment.Recommendation = recommendationText(overall)
	return assessment
}

// MeetsFloor reports whether an assessment clears the rule's score floor.
func MeetsFloor(r *rule.AssignmentRule, assessment *MatchingAssessment) bool {
	return assessment.OverallScore >= r.MinMatchingScore
}

// deriveStrengths classifies dimensions the rule actually weighs. Dimensions
// with zero weight contribute nothing to the score and are skipped.
func deriveStrengths(sub SubScores, weights rule.NormalizedWeights) (strengths, weaknesses []string) {
	for _, d := range rule.Dimensions {
		if weights.Get(d) == 0 {
			continue
		}
		switch v := sub.Get(d); {
		case v >= strengthThreshold:
			strengths = append(strengths, string(d))
		case v <= weaknessThreshold:
			weaknesses = append(weaknesses, string(d))
		}
	}
	return strengths, weaknesses
}

func recommendationText(score float64) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("strong match (%.1f): recommended for direct assignment", score)
	case score >= 60:
		return fmt.Sprintf("good match (%.1f): suitable with standard oversight", score)
	case score >= 40:
		return fmt.Sprintf("fair match (%.1f): acceptable if stronger candidates are saturated", score)
	default:
		return fmt.Sprintf("weak match (%.1f): assignment not advised", score)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
