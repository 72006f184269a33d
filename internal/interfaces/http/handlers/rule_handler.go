package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
)

// RuleHandler serves the assignment-rule CRUD and dry-run endpoints.
type RuleHandler struct {
	svc assignment.Service
}

// NewRuleHandler constructs a RuleHandler.
func NewRuleHandler(svc assignment.Service) *RuleHandler {
	return &RuleHandler{svc: svc}
}

// CreateRuleRequest is the payload for rule creation and update.
type CreateRuleRequest struct {
	Name                 string              `json:"name"`
	RuleType             rule.Strategy       `json:"rule_type"`
	Priority             int                 `json:"priority"`
	Enabled              *bool               `json:"enabled,omitempty"`
	Conditions           rule.Conditions     `json:"conditions"`
	Weights              rule.ScoringWeights `json:"weights"`
	MinMatchingScore     float64             `json:"min_matching_score"`
	MaxAssignmentsPerOrg *int                `json:"max_assignments_per_org,omitempty"`
	NotifyOnMatch        bool                `json:"notify_on_match"`
}

func (h *RuleHandler) Create(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid request body: %v", err))
		return
	}

	r, err := rule.NewAssignmentRule(req.Name, req.RuleType, req.Priority, req.Conditions, req.Weights)
	if err != nil {
		respondError(c, err)
		return
	}
	r.MinMatchingScore = req.MinMatchingScore
	r.MaxAssignmentsPerOrg = req.MaxAssignmentsPerOrg
	r.NotifyOnMatch = req.NotifyOnMatch
	if req.Enabled != nil {
		r.Enabled = *req.Enabled
	}

	if err := h.svc.CreateRule(c.Request.Context(), r); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, r)
}

func (h *RuleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "ruleID")
	if !ok {
		return
	}
	r, err := h.svc.GetRule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, r)
}

func (h *RuleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "ruleID")
	if !ok {
		return
	}
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid request body: %v", err))
		return
	}

	r, err := h.svc.GetRule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	r.Name = req.Name
	r.RuleType = req.RuleType
	r.Priority = req.Priority
	r.Conditions = req.Conditions
	r.Weights = req.Weights
	r.MinMatchingScore = req.MinMatchingScore
	r.MaxAssignmentsPerOrg = req.MaxAssignmentsPerOrg
	r.NotifyOnMatch = req.NotifyOnMatch
	if req.Enabled != nil {
		r.Enabled = *req.Enabled
	}

	if err := h.svc.UpdateRule(c.Request.Context(), r); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, r)
}

func (h *RuleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "ruleID")
	if !ok {
		return
	}
	if err := h.svc.DeleteRule(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *RuleHandler) List(c *gin.Context) {
	p := parsePagination(c)
	filter := rule.ListFilter{Pagination: p}
	if v := c.Query("rule_type"); v != "" {
		strategy := rule.Strategy(v)
		if !strategy.Valid() {
			respondError(c, apperrors.NewValidation("unknown rule_type %q", v))
			return
		}
		filter.RuleType = &strategy
	}
	filter.EnabledOnly = c.Query("enabled_only") == "true"

	rules, total, err := h.svc.ListRules(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, gin.H{"items": rules, "total": total}, p)
}

// Test dry-runs a rule against a package without touching any state.
func (h *RuleHandler) Test(c *gin.Context) {
	ruleID, ok := pathID(c, "ruleID")
	if !ok {
		return
	}
	pkgID, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	result, err := h.svc.TestRule(c.Request.Context(), ruleID, pkgID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}
