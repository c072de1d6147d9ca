package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes assessment outcome events. Messages are keyed by model
// version so every outcome of one release lands on the same partition.
type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, topic: topic}
}

func (p *Producer) Topic() string {
	return p.topic
}

func (p *Producer) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := event.ID
	headers := []kafka.Header{
		{Key: "event-type", Value: []byte(eventType)},
		{Key: "source", Value: []byte(source)},
	}
	if version, ok := data["model_version"].(string); ok && version != "" {
		key = version
		headers = append(headers, kafka.Header{Key: "model-version", Value: []byte(version)})
	}

	fields := logrus.Fields{
		"event_id":   event.ID,
		"event_type": eventType,
		"topic":      p.topic,
	}
	msg := kafka.Message{Key: []byte(key), Value: payload, Headers: headers}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.WithError(err).WithFields(fields).Error("Failed to publish event")
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	logger.Log.WithFields(fields).Debug("Event published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
