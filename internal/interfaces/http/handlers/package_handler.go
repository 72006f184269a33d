package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseBridge/internal/application/lifecycle"
	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// PackageHandler serves case-package lifecycle and flow-trail endpoints.
type PackageHandler struct {
	svc lifecycle.Service
}

// NewPackageHandler constructs a PackageHandler.
func NewPackageHandler(svc lifecycle.Service) *PackageHandler {
	return &PackageHandler{svc: svc}
}

func (h *PackageHandler) Create(c *gin.Context) {
	var req lifecycle.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	pkg, err := h.svc.CreatePackage(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, pkg)
}

func (h *PackageHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	pkg, err := h.svc.GetPackage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, pkg)
}

func (h *PackageHandler) List(c *gin.Context) {
	p := parsePagination(c)
	filter := casepackage.ListFilter{Pagination: p, Region: c.Query("region")}
	if v := c.Query("status"); v != "" {
		status := casepackage.Status(v)
		if !status.Valid() {
			respondError(c, apperrors.NewValidation("unknown status %q", v))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("source_org_id"); v != "" {
		id := common.ID(v)
		filter.SourceOrgID = &id
	}

	pkgs, total, err := h.svc.ListPackages(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, gin.H{"items": pkgs, "total": total}, p)
}

// transitionRequest carries the optional operator behind a manual transition.
type transitionRequest struct {
	Operator *lifecycle.Operator `json:"operator,omitempty"`
}

type transitionFunc func(c *gin.Context, id common.ID, version int64, op *lifecycle.Operator) (*casepackage.CasePackage, error)

func (h *PackageHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	version, ok := versionQuery(c)
	if !ok {
		return
	}
	var req transitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidation("invalid request body: %v", err))
			return
		}
	}
	pkg, err := fn(c, id, version, req.Operator)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, pkg)
}

func (h *PackageHandler) Publish(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
		return h.svc.Publish(c.Request.Context(), id, v, op)
	})
}

func (h *PackageHandler) Withdraw(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
		return h.svc.Withdraw(c.Request.Context(), id, v, op)
	})
}

func (h *PackageHandler) Start(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
		return h.svc.Start(c.Request.Context(), id, v, op)
	})
}

func (h *PackageHandler) Complete(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
		return h.svc.Complete(c.Request.Context(), id, v, op)
	})
}

func (h *PackageHandler) Cancel(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
		return h.svc.Cancel(c.Request.Context(), id, v, op)
	})
}

// FlowHistory lists the package's audit trail, newest first.
func (h *PackageHandler) FlowHistory(c *gin.Context) {
	id, ok := pathID(c, "packageID")
	if !ok {
		return
	}
	p := parsePagination(c)
	filter := casepackage.FlowFilter{Pagination: p, EventType: c.Query("event_type")}
	if v := c.Query("category"); v != "" {
		category := casepackage.FlowCategory(v)
		filter.Category = &category
	}

	records, total, err := h.svc.FlowHistory(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, gin.H{"items": records, "total": total}, p)
}
