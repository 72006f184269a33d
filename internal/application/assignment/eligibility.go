package assignment

import (
	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
)

// EvaluateEligibility decides whether an organization may receive a package
// under one rule. It returns the pass/fail verdict and the list of
// unmatched-criteria labels for diagnostics; a passing pair has an empty list.
//
// All criteria combine with AND semantics. Every unset rule field is a
// wildcard pass, never an automatic failure. The full label list is collected
// rather than short-circuiting so rule testing can report every miss at once.
func EvaluateEligibility(r *rule.AssignmentRule, pkg *casepackage.CasePackage, profile *organization.CapabilityProfile) (bool, []string) {
	var unmatched []string

	// The rule's region constraint binds the package; independently the
	// organization must actually serve the package's region when the rule
	// constrains regions at all.
	if r.Conditions.RegionConstrained() {
		if !r.Conditions.RegionMatches(pkg.Region) || !profile.ServesRegion(pkg.Region) {
			unmatched = append(unmatched, UnmatchedRegion)
		}
	}
	if !r.Conditions.AmountMatches(pkg.Amount) {
		unmatched = append(unmatched, UnmatchedAmountRange)
	}
	if !r.Conditions.CaseTypeMatches(pkg.CaseType) {
		unmatched = append(unmatched, UnmatchedCaseType)
	}
	if r.Conditions.OrgExcluded(profile.OrgID) {
		unmatched = append(unmatched, UnmatchedExcluded)
	}
	if !r.Conditions.OrgIncluded(profile.OrgID) {
		unmatched = append(unmatched, UnmatchedNotIncluded)
	}

	return len(unmatched) == 0, unmatched
}
