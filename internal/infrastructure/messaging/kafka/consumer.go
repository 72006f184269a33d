package kafka

import (
	"context"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
)

// Handler processes one consumed message. Returning an error leaves the
// offset uncommitted so the message is redelivered.
type Handler func(ctx context.Context, msg kafka.Message) error

// Consumer reads one topic within the configured consumer group.
type Consumer struct {
	reader *kafka.Reader
	logger logging.Logger
}

// NewConsumer builds a group reader for the topic.
func NewConsumer(cfg config.KafkaConfig, topic string, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   topic,
		}),
		logger: logger.Named("kafka_consumer"),
	}
}

// Run consumes until the context is cancelled. Handler failures are logged
// and the message is left uncommitted for redelivery.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return apperrors.Wrap(err, apperrors.ErrCodeMessagingError, "failed to fetch message")
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("message handler failed",
				logging.String("topic", msg.Topic),
				logging.Int("partition", msg.Partition),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset", logging.Err(err))
		}
	}
}

// Close shuts the reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
