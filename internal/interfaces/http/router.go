// Package http wires the gin router and HTTP server for the public API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/application/lifecycle"
	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseBridge/internal/interfaces/http/handlers"
	"github.com/turtacn/CaseBridge/internal/interfaces/http/middleware"
)

// RouterDeps collects everything the router needs.
type RouterDeps struct {
	Config     *config.Config
	Logger     logging.Logger
	Metrics    *prometheus.Metrics
	Assignment assignment.Service
	Lifecycle  lifecycle.Service
	Checkers   []handlers.Checker
	Version    string
}

// NewRouter builds the fully wired gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(ginMode(deps.Config.Server.Mode))

	r := gin.New()
	r.Use(middleware.WithRequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	health := handlers.NewHealthHandler(deps.Version, deps.Checkers...)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	if deps.Metrics != nil && deps.Config.Metrics.Enabled {
		path := deps.Config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(deps.Metrics.Handler()))
	}

	ruleHandler := handlers.NewRuleHandler(deps.Assignment)
	pkgHandler := handlers.NewPackageHandler(deps.Lifecycle)
	asgHandler := handlers.NewAssignmentHandler(deps.Assignment, deps.Config.Assignment.DefaultRecommendationLimit)

	v1 := r.Group("/api/v1")
	{
		rules := v1.Group("/rules")
		{
			rules.POST("", ruleHandler.Create)
			rules.GET("", ruleHandler.List)
			rules.GET("/:ruleID", ruleHandler.Get)
			rules.PUT("/:ruleID", ruleHandler.Update)
			rules.DELETE("/:ruleID", ruleHandler.Delete)
			rules.POST("/:ruleID/test/:packageID", ruleHandler.Test)
		}

		pkgs := v1.Group("/case-packages")
		{
			pkgs.POST("", pkgHandler.Create)
			pkgs.GET("", pkgHandler.List)
			pkgs.GET("/:packageID", pkgHandler.Get)
			pkgs.GET("/:packageID/flow", pkgHandler.FlowHistory)
			pkgs.POST("/:packageID/publish", pkgHandler.Publish)
			pkgs.POST("/:packageID/withdraw", pkgHandler.Withdraw)
			pkgs.POST("/:packageID/start", pkgHandler.Start)
			pkgs.POST("/:packageID/complete", pkgHandler.Complete)
			pkgs.POST("/:packageID/cancel", pkgHandler.Cancel)

			pkgs.GET("/:packageID/recommendations", asgHandler.Recommendations)
			pkgs.GET("/:packageID/assessments/:orgID", asgHandler.Assess)
			pkgs.POST("/:packageID/assign/auto", asgHandler.AutoAssign)
			pkgs.POST("/:packageID/assign/manual", asgHandler.ManualAssign)
		}

		assignments := v1.Group("/assignments")
		{
			assignments.POST("/batch", asgHandler.BatchAssign)
			assignments.POST("/statistics", asgHandler.Statistics)
		}
	}

	return r
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
