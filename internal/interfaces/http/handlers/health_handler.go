package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// Checker probes the health of one backing component.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (c CheckerFunc) Name() string                    { return c.ComponentName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	version  string
	started  time.Time
	checkers []Checker
}

func NewHealthHandler(version string, checkers ...Checker) *HealthHandler {
	return &HealthHandler{
		version:  version,
		started:  time.Now().UTC(),
		checkers: checkers,
	}
}

// Liveness reports that the process is up. It never touches dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  common.HealthUp,
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness probes every registered checker. Any failure makes the whole
// endpoint return 503 so load balancers stop routing traffic here.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	overall := common.HealthUp
	components := make([]common.ComponentHealth, 0, len(h.checkers))
	for _, chk := range h.checkers {
		start := time.Now()
		err := chk.Check(ctx)
		ch := common.ComponentHealth{
			Name:    chk.Name(),
			Status:  common.HealthUp,
			Latency: time.Since(start),
		}
		if err != nil {
			ch.Status = common.HealthDown
			ch.Message = err.Error()
			overall = common.HealthDown
		}
		components = append(components, ch)
	}

	status := http.StatusOK
	if overall == common.HealthDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"version":    h.version,
		"components": components,
	})
}
