package storage

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
)

// PredictionCache remembers the prediction made for a feature row. Keys are
// digests of the row, so no answer is stored in readable form.
type PredictionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPredictionCache(client *redis.Client, prefix string, ttl time.Duration) *PredictionCache {
	if prefix == "" {
		prefix = "obesity:prediction"
	}
	return &PredictionCache{client: client, prefix: prefix, ttl: ttl}
}

// Key derives the cache key for a row scored by the given model version.
func (c *PredictionCache) Key(version string, row []float64) string {
	h := sha256.New()
	h.Write([]byte(version))
	var buf [8]byte
	for _, v := range row {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%s:%s", c.prefix, hex.EncodeToString(h.Sum(nil)))
}

// Get returns the cached prediction and whether one was found. An entry that
// no longer decodes counts as a miss.
func (c *PredictionCache) Get(ctx context.Context, version string, row []float64) (models.Prediction, bool, error) {
	key := c.Key(version, row)
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Prediction{}, false, nil
	}
	if err != nil {
		return models.Prediction{}, false, err
	}
	pred, err := decodePrediction(payload)
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("discarding undecodable prediction cache entry")
		return models.Prediction{}, false, nil
	}
	logger.Log.WithField("key", key).Debug("prediction cache hit")
	return pred, true, nil
}

func (c *PredictionCache) Set(ctx context.Context, version string, row []float64, pred models.Prediction) error {
	payload, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}
	return c.client.Set(ctx, c.Key(version, row), payload, c.ttl).Err()
}

func decodePrediction(payload []byte) (models.Prediction, error) {
	var pred models.Prediction
	if err := json.Unmarshal(payload, &pred); err != nil {
		return models.Prediction{}, err
	}
	if pred.Label == "" {
		return models.Prediction{}, errors.New("cached prediction has no label")
	}
	return pred, nil
}
