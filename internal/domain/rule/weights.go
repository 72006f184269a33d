package rule

import (
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
)

// Dimension names the four scoring dimensions.
type Dimension string

const (
	DimensionRegion      Dimension = "region"
	DimensionPerformance Dimension = "performance"
	DimensionLoad        Dimension = "load"
	DimensionSpecialty   Dimension = "specialty"
)

// Dimensions lists every scoring dimension in canonical order.
var Dimensions = []Dimension{DimensionRegion, DimensionPerformance, DimensionLoad, DimensionSpecialty}

// ScoringWeights carries the raw integer weight per dimension. Weights a rule
// omits stay zero and contribute nothing after normalization.
type ScoringWeights struct {
	Region      int `json:"region"`
	Performance int `json:"performance"`
	Load        int `json:"load"`
	Specialty   int `json:"specialty"`
}

// Total returns the sum of all raw weights.
func (w ScoringWeights) Total() int {
	return w.Region + w.Performance + w.Load + w.Specialty
}

// Validate rejects negative weights and all-zero weight sets.
func (w ScoringWeights) Validate() error {
	if w.Region < 0 || w.Performance < 0 || w.Load < 0 || w.Specialty < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidRuleDefinition, "scoring weights must be non-negative")
	}
	if w.Total() == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidRuleDefinition, "scoring weights must not all be zero")
	}
	return nil
}

// NormalizedWeights holds per-dimension weights scaled so they sum to 1.
type NormalizedWeights struct {
	Region      float64
	Performance float64
	Load        float64
	Specialty   float64
}

// Get returns the normalized weight for a dimension.
func (n NormalizedWeights) Get(d Dimension) float64 {
	switch d {
	case DimensionRegion:
		return n.Region
	case DimensionPerformance:
		return n.Performance
	case DimensionLoad:
		return n.Load
	case DimensionSpecialty:
		return n.Specialty
	}
	return 0
}

// Sum returns the total of all normalized weights.
func (n NormalizedWeights) Sum() float64 {
	return n.Region + n.Performance + n.Load + n.Specialty
}

// Normalize scales the raw weights to sum to 1. Callers must have validated
// the weight set first; an all-zero set normalizes to all-zero output.
func (w ScoringWeights) Normalize() NormalizedWeights {
	total := float64(w.Total())
	if total == 0 {
		return NormalizedWeights{}
	}
	return NormalizedWeights{
		Region:      float64(w.Region) / total,
		Performance: float64(w.Performance) / total,
		Load:        float64(w.Load) / total,
		Specialty:   float64(w.Specialty) / total,
	}
}
