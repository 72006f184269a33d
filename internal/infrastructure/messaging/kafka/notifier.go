package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

// DefaultNotificationTopic receives match notifications for rules that ask
// for them.
const DefaultNotificationTopic = "casebridge.notifications"

// MatchNotification is the wire form of one match notification.
type MatchNotification struct {
	RuleID        common.ID `json:"rule_id"`
	RuleName      string    `json:"rule_name"`
	OrgID         common.ID `json:"org_id"`
	CasePackageID common.ID `json:"case_package_id"`
	Score         float64   `json:"score"`
	NotifiedAt    time.Time `json:"notified_at"`
}

// NotificationSink publishes match notifications to a Kafka topic for the
// downstream notification service. It implements assignment.NotificationSink.
type NotificationSink struct {
	writer *kafka.Writer
	logger logging.Logger
}

var _ assignment.NotificationSink = (*NotificationSink)(nil)

// NewNotificationSink builds the sink. An empty topic falls back to
// DefaultNotificationTopic.
func NewNotificationSink(cfg config.KafkaConfig, topic string, logger logging.Logger) *NotificationSink {
	if topic == "" {
		topic = DefaultNotificationTopic
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NotificationSink{
		writer: newWriter(cfg, topic),
		logger: logger.Named("notification_sink"),
	}
}

func (s *NotificationSink) NotifyMatch(ctx context.Context, r *rule.AssignmentRule, a *assignment.MatchingAssessment) error {
	payload, err := json.Marshal(MatchNotification{
		RuleID:        r.ID,
		RuleName:      r.Name,
		OrgID:         a.OrgID,
		CasePackageID: a.CasePackageID,
		Score:         a.OverallScore,
		NotifiedAt:    time.Now().UTC(),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode match notification")
	}
	msg := kafka.Message{Key: []byte(a.OrgID), Value: payload}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMessagingError, "failed to publish match notification")
	}
	return nil
}

// Close flushes and closes the writer.
func (s *NotificationSink) Close() error {
	return s.writer.Close()
}
