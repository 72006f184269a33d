// Background worker entry point for CaseBridge. Consumes the flow-record
// topic and surfaces the audit stream as structured logs and metrics for
// external reporting.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/prometheus"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
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
	logger = logger.Named("worker")

	logger.Info("starting CaseBridge flow worker",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.FlowTopic),
		logging.String("group_id", cfg.Kafka.GroupID))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.NewMetrics(cfg.Metrics.Namespace)

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.FlowTopic, logger)
	defer consumer.Close()

	handler := func(ctx context.Context, msg kafkago.Message) error {
		var rec casepackage.FlowRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			logger.Error("dropping undecodable flow record",
				logging.String("key", string(msg.Key)), logging.Err(err))
			return nil
		}
		metrics.FlowRecordsTotal.Inc()
		if rec.BeforeStatus != nil && rec.AfterStatus != nil {
			metrics.StatusTransitionsTotal.WithLabelValues(
				string(*rec.BeforeStatus), string(*rec.AfterStatus), rec.EventType).Inc()
		}
		logger.Info("flow record",
			logging.String("case_package_id", string(rec.CasePackageID)),
			logging.String("event_type", rec.EventType),
			logging.String("category", string(rec.Category)),
			logging.String("severity", string(rec.Severity)))
		return nil
	}

	if err := consumer.Run(ctx, handler); err != nil {
		return err
	}
	logger.Info("worker stopped")
	return nil
}
