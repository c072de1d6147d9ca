package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads assessment events, for example to follow the label mix of
// a model release.
type Consumer struct {
	reader messageReader
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader}
}

// Consume hands each event to handler until ctx ends. A message is committed
// once handled, or once found undecodable.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			continue
		}

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Warn("Skipping undecodable event")
			c.commit(ctx, message)
			continue
		}

		if err := handler(ctx, event); err != nil {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"event_id":   event.ID,
				"event_type": event.Type,
			}).Error("Failed to process event")
			continue
		}
		c.commit(ctx, message)
	}
}

func (c *Consumer) commit(ctx context.Context, message kafka.Message) {
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		logger.Log.WithError(err).Error("Failed to commit message")
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
