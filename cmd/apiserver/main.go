// API server entry point for CaseBridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/application/lifecycle"
	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseBridge/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/CaseBridge/internal/infrastructure/database/redis"
	"github.com/turtacn/CaseBridge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/CaseBridge/internal/interfaces/http"
	"github.com/turtacn/CaseBridge/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrateOnStart := flag.Bool("migrate", false, "apply pending database migrations before serving")
	flag.Parse()

	if err := run(*configPath, *migrateOnStart); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnStart bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	logger.Info("starting CaseBridge API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.Watch(configPath, func(_ *config.Config) {
		logger.Warn("configuration file changed on disk; restart to apply")
	})

	if migrateOnStart {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher := kafka.NewPublisher(cfg.Kafka, logger)
	defer publisher.Close()
	sink := kafka.NewNotificationSink(cfg.Kafka, kafka.DefaultNotificationTopic, logger)
	defer sink.Close()

	ruleRepo := repositories.NewRuleRepository(pool, logger)
	pkgRepo := repositories.NewPackageRepository(pool, logger)
	flowRepo := repositories.NewFlowRepository(pool, logger)
	statsRepo := repositories.NewStatisticsRepository(pool, logger)
	profiles := redis.NewCachingProfileProvider(
		repositories.NewProfileRepository(pool, logger),
		redisClient, cfg.Assignment.ProfileCacheTTL, logger)

	assignmentSvc := assignment.NewService(ruleRepo, pkgRepo, flowRepo, profiles, statsRepo,
		sink, publisher, logger, &assignment.Config{
			BatchConcurrency:           cfg.Assignment.BatchConcurrency,
			DefaultRecommendationLimit: cfg.Assignment.DefaultRecommendationLimit,
		})
	lifecycleSvc := lifecycle.NewService(pkgRepo, flowRepo, publisher, logger)

	metrics := prometheus.NewMetrics(cfg.Metrics.Namespace)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Assignment: assignmentSvc,
		Lifecycle:  lifecycleSvc,
		Version:    version,
		Checkers: []handlers.Checker{
			handlers.CheckerFunc{ComponentName: "postgres", Fn: func(ctx context.Context) error {
				return postgres.HealthCheck(ctx, pool)
			}},
			handlers.CheckerFunc{ComponentName: "redis", Fn: redisClient.Ping},
		},
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
