package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
)

func TestPredictionCacheKey(t *testing.T) {
	c := NewPredictionCache(nil, "", time.Minute)
	row := []float64{1, 25, 1.8, 80}

	key := c.Key("v1", row)
	assert.True(t, strings.HasPrefix(key, "obesity:prediction:"))
	assert.Equal(t, key, c.Key("v1", []float64{1, 25, 1.8, 80}))
	assert.NotEqual(t, key, c.Key("v2", row))
	assert.NotEqual(t, key, c.Key("v1", []float64{1, 25, 1.8, 81}))
	assert.NotContains(t, key, "80")
}

func TestPredictionCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewPredictionCache(client, "test", time.Minute)
	_, ok, err := c.Get(context.Background(), "v1", []float64{1})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), "v1", []float64{1}, models.Prediction{Label: "Normal_Weight"}))
}

func TestDecodePrediction(t *testing.T) {
	want := models.Prediction{
		Label:         "Normal_Weight",
		Confidence:    0.3,
		Probabilities: map[string]float64{"Normal_Weight": 0.3, "Obesity_Type_I": 0.7},
	}
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := decodePrediction(payload)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = decodePrediction([]byte("Normal_Weight"))
	assert.Error(t, err)
	_, err = decodePrediction([]byte(`{"confidence":0.3}`))
	assert.Error(t, err)
}
