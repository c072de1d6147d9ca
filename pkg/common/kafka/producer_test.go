package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
)

func init() {
	logger.Configure(io.Discard, "error", "text")
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishEventKeysByModelVersion(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "obesity-assessments"}

	err := p.PublishEvent(context.Background(), "assessment.completed", "obesity-check", map[string]interface{}{
		"label":         "Normal_Weight",
		"model_version": "2024.12-rf3+abc",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "2024.12-rf3+abc", string(msg.Key))
	assert.Equal(t, "assessment.completed", header(msg, "event-type"))
	assert.Equal(t, "2024.12-rf3+abc", header(msg, "model-version"))

	var ev models.Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Normal_Weight", ev.Data["label"])

	assert.Equal(t, "obesity-assessments", p.Topic())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishEventWithoutVersionUsesEventID(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "t"}
	require.NoError(t, p.PublishEvent(context.Background(), "x", "y", nil))

	var ev models.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, ev.ID, string(w.msgs[0].Key))
	assert.Empty(t, header(w.msgs[0], "model-version"))
}

func TestPublishEventWrapsWriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := &Producer{writer: &fakeWriter{err: boom}, topic: "t"}
	err := p.PublishEvent(context.Background(), "x", "y", nil)
	assert.ErrorIs(t, err, boom)
}

func TestNewProducerKeepsTopic(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "obesity-assessments")
	assert.Equal(t, "obesity-assessments", p.Topic())
	assert.NoError(t, p.Close())
}
