package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseBridge/internal/domain/rule"
)

func TestScoreMatch_WeightedSum(t *testing.T) {
	// Region 60 and specialty 40 normalize to 0.6 and 0.4; with region
	// strength 0.9 and case-type strength 0.8 the score is 86.
	r, err := rule.NewAssignmentRule("east-auto", rule.StrategyAuto, 10, rule.Conditions{},
		rule.ScoringWeights{Region: 60, Specialty: 40})
	require.NoError(t, err)

	a := ScoreMatch(r, testPackage(t), testProfile("org-a"))
	assert.InDelta(t, 86.0, a.OverallScore, 1e-9)
	assert.InDelta(t, 0.9, a.SubScores.Region, 1e-9)
	assert.InDelta(t, 0.8, a.SubScores.Specialty, 1e-9)
}

func TestScoreMatch_WeightsNotSummingToHundred(t *testing.T) {
	// 3:1:0:0 behaves identically to 75:25:0:0.
	r1, err := rule.NewAssignmentRule("a", rule.StrategyAuto, 1, rule.Conditions{},
		rule.ScoringWeights{Region: 3, Performance: 1})
	require.NoError(t, err)
	r2, err := rule.NewAssignmentRule("b", rule.StrategyAuto, 1, rule.Conditions{},
		rule.ScoringWeights{Region: 75, Performance: 25})
	require.NoError(t, err)

	pkg, profile := testPackage(t), testProfile("org-a")
	assert.InDelta(t, ScoreMatch(r2, pkg, profile).OverallScore, ScoreMatch(r1, pkg, profile).OverallScore, 1e-9)
}

func TestScoreMatch_Deterministic(t *testing.T) {
	r := testRule(t, rule.Conditions{})
	pkg, profile := testPackage(t), testProfile("org-a")
	first := ScoreMatch(r, pkg, profile)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.OverallScore, ScoreMatch(r, pkg, profile).OverallScore)
		assert.Equal(t, first.SubScores, ScoreMatch(r, pkg, profile).SubScores)
	}
}

func TestScoreMatch_BoundedZeroToHundred(t *testing.T) {
	r := testRule(t, rule.Conditions{})
	pkg := testPackage(t)
	for _, profile := range []struct {
		load, success, region, specialty float64
	}{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.5, 0.33, 0.77, 0.12},
	} {
		p := testProfile("org-a")
		p.CurrentLoad = profile.load
		p.AverageSuccessRate = profile.success
		p.RegionStrengths["east"] = profile.region
		p.CaseTypeStrengths["credit_card"] = profile.specialty
		score := ScoreMatch(r, pkg, p).OverallScore
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestScoreMatch_LoadIsInverted(t *testing.T) {
	r, err := rule.NewAssignmentRule("load-only", rule.StrategyAuto, 1, rule.Conditions{},
		rule.ScoringWeights{Load: 100})
	require.NoError(t, err)

	p := testProfile("org-a")
	p.CurrentLoad = 0.25
	a := ScoreMatch(r, testPackage(t), p)
	assert.InDelta(t, 75.0, a.OverallScore, 1e-9)
}

func TestScoreMatch_SpecialtyFallsBackToAmountBucket(t *testing.T) {
	r, err := rule.NewAssignmentRule("specialty-only", rule.StrategyAuto, 1, rule.Conditions{},
		rule.ScoringWeights{Specialty: 100})
	require.NoError(t, err)

	p := testProfile("org-a")
	p.CaseTypeStrengths = nil
	p.AmountRangeStrengths = map[string]float64{"10k_100k": 0.65}
	a := ScoreMatch(r, testPackage(t), p)
	assert.InDelta(t, 65.0, a.OverallScore, 1e-9)

	p.AmountRangeStrengths = nil
	a = ScoreMatch(r, testPackage(t), p)
	assert.Zero(t, a.OverallScore)
}

func TestScoreMatch_StrengthsAndWeaknesses(t *testing.T) {
	r := testRule(t, rule.Conditions{})
	p := testProfile("org-a")
	p.RegionStrengths["east"] = 0.95
	p.AverageSuccessRate = 0.2
	p.CurrentLoad = 0.1
	p.CaseTypeStrengths["credit_card"] = 0.5

	a := ScoreMatch(r, testPackage(t), p)
	assert.ElementsMatch(t, []string{string(rule.DimensionRegion), string(rule.DimensionLoad)}, a.Strengths)
	assert.ElementsMatch(t, []string{string(rule.DimensionPerformance)}, a.Weaknesses)
}

func TestScoreMatch_ZeroWeightDimensionSkipsClassification(t *testing.T) {
	r, err := rule.NewAssignmentRule("region-only", rule.StrategyAuto, 1, rule.Conditions{},
		rule.ScoringWeights{Region: 100})
	require.NoError(t, err)

	p := testProfile("org-a")
	p.AverageSuccessRate = 0.05
	a := ScoreMatch(r, testPackage(t), p)
	assert.NotContains(t, a.Weaknesses, string(rule.DimensionPerformance))
}

func TestMeetsFloor(t *testing.T) {
	r := testRule(t, rule.Conditions{})
	r.MinMatchingScore = 70
	assert.True(t, MeetsFloor(r, &MatchingAssessment{OverallScore: 70}))
	assert.True(t, MeetsFloor(r, &MatchingAssessment{OverallScore: 70.0001}))
	assert.False(t, MeetsFloor(r, &MatchingAssessment{OverallScore: 69.9999}))
}

func TestRecommendationText_Tiers(t *testing.T) {
	assert.Contains(t, recommendationText(86), "strong match")
	assert.Contains(t, recommendationText(80), "strong match")
	assert.Contains(t, recommendationText(65), "good match")
	assert.Contains(t, recommendationText(45), "fair match")
	assert.Contains(t, recommendationText(12), "weak match")
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.4, clamp01(0.4))
}
