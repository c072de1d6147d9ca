package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
	"github.com/synaptica-ai/obesity-check/pkg/serving/predictor"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]Prediction
	sets    int
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]Prediction)}
}

func (c *memoryCache) key(version string, row []float64) string {
	return version + fmt.Sprint(row)
}

func (c *memoryCache) Get(ctx context.Context, version string, row []float64) (Prediction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return Prediction{}, false, c.err
	}
	pred, ok := c.entries[c.key(version, row)]
	return pred, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, version string, row []float64, pred Prediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[c.key(version, row)] = pred
	return c.err
}

type recordedEvent struct {
	eventType string
	data      map[string]interface{}
}

type memoryEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (e *memoryEvents) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{eventType: eventType, data: data})
	return e.err
}

// countingModel lets tests assert whether the model was called at all.
type countingModel struct {
	inner predictor.Classifier
	calls int
}

func (m *countingModel) Predict(rows [][]float64) ([]int, error) {
	m.calls++
	return m.inner.Predict(rows)
}

func TestAssessReferenceSubmission(t *testing.T) {
	b := loadBundle(t)
	events := &memoryEvents{}
	svc := NewService(b, NewValidator(), WithEvents(events))

	a, err := svc.Assess(context.Background(), sample())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Normal_Weight", a.Label)
	assert.Equal(t, b.Version(), a.ModelVersion)
	assert.False(t, a.Cached)
	require.Len(t, a.Features, questionnaire.FieldCount)
	assert.Equal(t, 25.0, a.Features[questionnaire.FieldAge].Value)
	assert.Equal(t, 1.8, a.Features[questionnaire.FieldHeight].Value)

	require.Len(t, events.events, 1)
	ev := events.events[0]
	assert.Equal(t, EventAssessmentCompleted, ev.eventType)
	assert.Equal(t, "Normal_Weight", ev.data["label"])
	for _, f := range questionnaire.Fields() {
		assert.NotContains(t, ev.data, f.String())
	}
}

func TestAssessRejectsPlaceholderWithoutPredicting(t *testing.T) {
	b := loadBundle(t)
	model := &countingModel{inner: b.Model}
	svc := NewService(b, NewValidator())
	svc.model = model

	raw := sample()
	raw.Alcohol = questionnaire.Placeholder
	a, err := svc.Assess(context.Background(), raw)
	assert.Nil(t, a)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 0, model.calls)

	_, err = svc.Assess(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, 1, model.calls)
}

func TestAssessMalformedAge(t *testing.T) {
	svc := NewService(loadBundle(t), NewValidator())

	raw := sample()
	raw.Age = "abc"
	a, err := svc.Assess(context.Background(), raw)
	assert.Nil(t, a)

	var perr *NumericParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, questionnaire.FieldAge, perr.Field)
}

func TestAssessUsesCache(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(loadBundle(t), NewValidator(), WithCache(cache))

	first, err := svc.Assess(context.Background(), sample())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Assess(context.Background(), sample())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Label, second.Label)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Probabilities, second.Probabilities)
	assert.InDelta(t, 0.3, second.Confidence, 1e-9)
	assert.Equal(t, 1, cache.sets)
}

func TestAssessSurvivesCacheAndEventFailures(t *testing.T) {
	cache := newMemoryCache()
	cache.err = errors.New("redis down")
	events := &memoryEvents{err: errors.New("kafka down")}
	svc := NewService(loadBundle(t), NewValidator(), WithCache(cache), WithEvents(events))

	a, err := svc.Assess(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, "Normal_Weight", a.Label)
	assert.False(t, a.Cached)
}

func TestAssessConcurrentReaders(t *testing.T) {
	svc := NewService(loadBundle(t), NewValidator())

	var wg sync.WaitGroup
	labels := make([]string, 16)
	for i := range labels {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := svc.Assess(context.Background(), sample())
			if err == nil {
				labels[i] = a.Label
			}
		}(i)
	}
	wg.Wait()
	for _, l := range labels {
		assert.Equal(t, "Normal_Weight", l)
	}
}
