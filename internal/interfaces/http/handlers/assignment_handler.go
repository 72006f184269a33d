package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// AssignmentHandler serves the smart assignment engine endpoints.
type AssignmentHandler struct {
	svc          assignment.Service
	defaultLimit int
}

// NewAssignmentHandler constructs an AssignmentHandler. defaultLimit bounds
// recommendation responses when the caller does not pass a limit; zero or
// negative means unlimited.
func NewAssignmentHandler(svc assignment.Service, defaultLimit int) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, defaultLimit: defaultLimit}
}

// Recommendations returns the ranked eligible organizations for a package.
func (h *AssignmentHandler) Recommendations(c *gin.Context) {
	id, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	limit := h.defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, apperrors.NewValidation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	recs, err := h.svc.GetRecommendations(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}

// Assess scores one explicit organization/package pair.
func (h *AssignmentHandler) Assess(c *gin.Context) {
	pkgID, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	orgID, ok := pathID(c, "orgID")
	if !ok {
		return
	}
	a, err := h.svc.AssessMatching(c.Request.Context(), orgID, pkgID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a)
}

// autoAssignRequest optionally pins execution to one rule.
type autoAssignRequest struct {
	RuleID *common.ID `json:"rule_id,omitempty"`
}

// AutoAssign commits the top recommendation for the package.
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	id, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	var req autoAssignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidation("invalid request body: %v", err))
			return
		}
	}
	result, err := h.svc.ExecuteAutoAssignment(c.Request.Context(), id, req.RuleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// manualAssignRequest names the target organization directly.
type manualAssignRequest struct {
	OrgID    common.ID            `json:"org_id"`
	RuleID   *common.ID           `json:"rule_id,omitempty"`
	Operator *assignment.Operator `json:"operator,omitempty"`
}

// ManualAssign commits directly to the named organization.
func (h *AssignmentHandler) ManualAssign(c *gin.Context) {
	id, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	var req manualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	if req.OrgID == "" {
		respondError(c, apperrors.NewValidation("org_id is required"))
		return
	}
	result, err := h.svc.ExecuteManualAssignment(c.Request.Context(), id, req.OrgID, req.RuleID, req.Operator)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// BatchAssign runs assignment for many packages in one call.
func (h *AssignmentHandler) BatchAssign(c *gin.Context) {
	var req assignment.BatchAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	resp, err := h.svc.ExecuteBatchAssignment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Statistics aggregates assignment outcomes over a date range.
func (h *AssignmentHandler) Statistics(c *gin.Context) {
	var req assignment.StatisticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	stats, err := h.svc.GetAssignmentStatistics(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}
