// Package kafka provides the event publisher, the notification sink, and the
// flow-record consumer on top of segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// MatchEvent is the wire form of one committed or recommended match.
type MatchEvent struct {
	RuleID        common.ID `json:"rule_id,omitempty"`
	OrgID         common.ID `json:"org_id"`
	CasePackageID common.ID `json:"case_package_id"`
	Score         float64   `json:"score"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher pushes flow records and match events to their topics. It
// implements assignment.EventPublisher and lifecycle.FlowPublisher.
type Publisher struct {
	flowWriter  *kafka.Writer
	matchWriter *kafka.Writer
	logger      logging.Logger
}

// NewPublisher builds writers for the flow and match topics.
func NewPublisher(cfg config.KafkaConfig, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{
		flowWriter:  newWriter(cfg, cfg.FlowTopic),
		matchWriter: newWriter(cfg, cfg.MatchTopic),
		logger:      logger.Named("kafka"),
	}
}

func newWriter(cfg config.KafkaConfig, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}
}

// PublishFlowRecord emits one flow record keyed by case package id so a
// package's trail stays ordered within its partition.
func (p *Publisher) PublishFlowRecord(ctx context.Context, rec *casepackage.FlowRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode flow record")
	}
	msg := kafka.Message{
		Key:   []byte(rec.CasePackageID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(rec.EventType)},
		},
	}
	if err := p.flowWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish flow record",
			logging.String("case_package_id", string(rec.CasePackageID)), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeMessagingError, "failed to publish flow record")
	}
	return nil
}

// PublishMatch emits one match event keyed by case package id.
func (p *Publisher) PublishMatch(ctx context.Context, ruleID, orgID, casePackageID common.ID, score float64) error {
	payload, err := json.Marshal(MatchEvent{
		RuleID:        ruleID,
		OrgID:         orgID,
		CasePackageID: casePackageID,
		Score:         score,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode match event")
	}
	msg := kafka.Message{Key: []byte(casePackageID), Value: payload}
	if err := p.matchWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish match event",
			logging.String("case_package_id", string(casePackageID)), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeMessagingError, "failed to publish match event")
	}
	return nil
}

// Close flushes and closes both writers.
func (p *Publisher) Close() error {
	ferr := p.flowWriter.Close()
	merr := p.matchWriter.Close()
	if ferr != nil {
		return ferr
	}
	return merr
}
