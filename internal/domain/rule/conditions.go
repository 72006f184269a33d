package rule

import (
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// AmountRange bounds a package amount. Nil bounds mean unbounded on that side.
type AmountRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether amount falls within [Min, Max], inclusive.
func (r AmountRange) Contains(amount float64) bool {
	if r.Min != nil && amount < *r.Min {
		return false
	}
	if r.Max != nil && amount > *r.Max {
		return false
	}
	return true
}

// Validate rejects inverted bounds.
func (r AmountRange) Validate() error {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return apperrors.Newf(apperrors.ErrCodeInvalidRuleDefinition,
			"amount range min %v exceeds max %v", *r.Min, *r.Max)
	}
	return nil
}

// Conditions is the typed predicate attached to an assignment rule. Every
// unset field is a wildcard: it constrains nothing. Matching is exact set
// membership, never substring comparison.
type Conditions struct {
	Regions       []string    `json:"regions,omitempty"`
	AmountRange   *AmountRange `json:"amount_range,omitempty"`
	CaseTypes     []string    `json:"case_types,omitempty"`
	IncludeOrgIDs []common.ID `json:"include_org_ids,omitempty"`
	ExcludeOrgIDs []common.ID `json:"exclude_org_ids,omitempty"`
}

// Validate checks the structural invariants of the condition set.
func (c Conditions) Validate() error {
	if c.AmountRange != nil {
		return c.AmountRange.Validate()
	}
	return nil
}

// RegionConstrained reports whether the rule restricts target regions.
func (c Conditions) RegionConstrained() bool { return len(c.Regions) > 0 }

// RegionMatches reports whether region satisfies the region constraint.
// An empty region set is a wildcard.
func (c Conditions) RegionMatches(region string) bool {
	if len(c.Regions) == 0 {
		return true
	}
	for _, r := range c.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// AmountMatches reports whether amount satisfies the amount constraint.
func (c Conditions) AmountMatches(amount float64) bool {
	if c.AmountRange == nil {
		return true
	}
	return c.AmountRange.Contains(amount)
}

// CaseTypeMatches reports whether caseType satisfies the case-type constraint.
func (c Conditions) CaseTypeMatches(caseType string) bool {
	if len(c.CaseTypes) == 0 {
		return true
	}
	for _, t := range c.CaseTypes {
		if t == caseType {
			return true
		}
	}
	return false
}

// OrgExcluded reports whether orgID appears in the exclusion set.
func (c Conditions) OrgExcluded(orgID common.ID) bool {
	for _, id := range c.ExcludeOrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// OrgIncluded reports whether orgID satisfies the inclusion constraint.
// An empty include set admits every organization.
func (c Conditions) OrgIncluded(orgID common.ID) bool {
	if len(c.IncludeOrgIDs) == 0 {
		return true
	}
	for _, id := range c.IncludeOrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}
