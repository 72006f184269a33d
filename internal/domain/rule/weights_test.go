package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoringWeights_Validate(t *testing.T) {
	assert.NoError(t, ScoringWeights{Region: 60, Performance: 40}.Validate())
	assert.NoError(t, ScoringWeights{Specialty: 1}.Validate())
	assert.Error(t, ScoringWeights{}.Validate())
	assert.Error(t, ScoringWeights{Region: -1, Performance: 10}.Validate())
}

func TestNormalize_SumsToOne(t *testing.T) {
	cases := []ScoringWeights{
		{Region: 60, Performance: 40},
		{Region: 1, Performance: 1, Load: 1, Specialty: 1},
		{Specialty: 7},
		{Region: 3, Load: 17, Specialty: 80},
	}
	for _, w := range cases {
		n := w.Normalize()
		assert.InDelta(t, 1.0, n.Sum(), 1e-9, "weights %+v", w)
	}
}

func TestNormalize_Proportions(t *testing.T) {
	n := ScoringWeights{Region: 60, Performance: 40}.Normalize()
	assert.InDelta(t, 0.6, n.Region, 1e-12)
	assert.InDelta(t, 0.4, n.Performance, 1e-12)
	assert.Zero(t, n.Load)
	assert.Zero(t, n.Specialty)
}

func TestNormalize_AllZeroYieldsZero(t *testing.T) {
	n := ScoringWeights{}.Normalize()
	assert.Zero(t, n.Sum())
}

func TestNormalizedWeights_Get(t *testing.T) {
	n := ScoringWeights{Region: 1, Performance: 2, Load: 3, Specialty: 4}.Normalize()
	assert.Equal(t, n.Region, n.Get(DimensionRegion))
	assert.Equal(t, n.Performance, n.Get(DimensionPerformance))
	assert.Equal(t, n.Load, n.Get(DimensionLoad))
	assert.Equal(t, n.Specialty, n.Get(DimensionSpecialty))
	assert.Zero(t, n.Get(Dimension("bogus")))
}
