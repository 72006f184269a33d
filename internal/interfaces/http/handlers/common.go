// Package handlers holds the gin HTTP handlers for the public API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseBridge/internal/interfaces/http/middleware"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, common.APIResponse[interface{}]{
		Success:   true,
		Data:      data,
		RequestID: middleware.RequestID(c),
		Timestamp: common.Now(),
	})
}

func respondPage(c *gin.Context, data interface{}, p *common.Pagination) {
	c.JSON(http.StatusOK, common.APIResponse[interface{}]{
		Success:    true,
		Data:       data,
		Pagination: p,
		RequestID:  middleware.RequestID(c),
		Timestamp:  common.Now(),
	})
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details never leak to the client.
		message = apperrors.DefaultMessageForCode(apperrors.ErrCodeInternal)
	}
	c.AbortWithStatusJSON(status, common.APIResponse[interface{}]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    string(code),
			Message: message,
		},
		RequestID: middleware.RequestID(c),
		Timestamp: common.Now(),
	})
}

func parsePagination(c *gin.Context) *common.Pagination {
	p := &common.Pagination{Page: 1, PageSize: 20}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			p.PageSize = n
		}
	}
	return p
}

func pathID(c *gin.Context, name string) (common.ID, bool) {
	id := common.ID(c.Param(name))
	if id == "" {
		respondError(c, apperrors.NewValidation("%s is required", name))
		return "", false
	}
	return id, true
}

// versionQuery reads the optional expected-version query parameter; zero
// means "use current".
func versionQuery(c *gin.Context) (int64, bool) {
	v := c.Query("version")
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		respondError(c, apperrors.NewValidation("version must be a non-negative integer"))
		return 0, false
	}
	return n, true
}
