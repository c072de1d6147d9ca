package screening

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/observability/metrics"
	"github.com/synaptica-ai/obesity-check/pkg/serving"
	"github.com/synaptica-ai/obesity-check/pkg/serving/predictor"
)

const (
	EventAssessmentCompleted = "assessment.completed"
	eventSource              = "obesity-check"
	eventTimeout             = 2 * time.Second
)

// PredictionCache is implemented by storage.PredictionCache.
type PredictionCache interface {
	Get(ctx context.Context, version string, row []float64) (models.Prediction, bool, error)
	Set(ctx context.Context, version string, row []float64, pred models.Prediction) error
}

// EventPublisher is implemented by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Option func(*Service)

func WithCache(cache PredictionCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithEvents(events EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// Service runs one submission through validation, translation and
// prediction. It holds no mutable state and may serve requests concurrently.
type Service struct {
	validator  *Validator
	translator *Translator
	bundle     *serving.Bundle
	model      predictor.Classifier
	cache      PredictionCache
	events     EventPublisher
}

func NewService(bundle *serving.Bundle, validator *Validator, opts ...Option) *Service {
	s := &Service{
		validator:  validator,
		translator: NewTranslator(bundle.Encoders),
		bundle:     bundle,
		model:      bundle.Model,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess validates, translates and scores raw. Validation failures never
// reach the model.
func (s *Service) Assess(ctx context.Context, raw models.RawSubmission) (*models.Assessment, error) {
	id := uuid.New().String()
	log := logger.Log.WithField("assessment_id", id)

	if err := s.validator.Validate(raw); err != nil {
		metrics.ObserveOutcome(metrics.OutcomeInvalid)
		log.WithError(err).Debug("submission rejected")
		return nil, err
	}

	start := time.Now()
	vec, err := s.translator.Translate(raw)
	if err != nil {
		s.observeFailure(log, err)
		return nil, err
	}

	version := s.bundle.Version()
	row := vec.Row()
	assessment := &models.Assessment{
		ID:           id,
		Features:     vec.Features(),
		ModelVersion: version,
		CreatedAt:    time.Now().UTC(),
	}

	pred, ok := s.cached(ctx, log, version, row)
	if ok {
		assessment.Cached = true
	} else {
		pred, err = Predict(s.model, s.bundle.Encoders, vec)
		if err != nil {
			s.observeFailure(log, err)
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, version, row, pred); err != nil {
				log.WithError(err).Warn("prediction cache write failed")
			}
		}
	}
	assessment.Label = pred.Label
	assessment.Confidence = pred.Confidence
	assessment.Probabilities = pred.Probabilities

	took := time.Since(start)
	assessment.LatencyMs = float64(took.Microseconds()) / 1000.0
	metrics.ObserveOutcome(metrics.OutcomeSuccess)
	metrics.ObservePrediction(assessment.Label, took)

	log.WithFields(logrus.Fields{
		"label":      assessment.Label,
		"cached":     assessment.Cached,
		"latency_ms": assessment.LatencyMs,
	}).Info("Assessment completed")

	s.publish(ctx, log, assessment)
	return assessment, nil
}

func (s *Service) cached(ctx context.Context, log *logrus.Entry, version string, row []float64) (Prediction, bool) {
	if s.cache == nil {
		return Prediction{}, false
	}
	pred, ok, err := s.cache.Get(ctx, version, row)
	if err != nil {
		log.WithError(err).Warn("prediction cache read failed")
		return Prediction{}, false
	}
	metrics.ObserveCache(ok)
	return pred, ok
}

// publish emits the outcome only. Answers and features stay in the process.
func (s *Service) publish(ctx context.Context, log *logrus.Entry, a *models.Assessment) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()
	err := s.events.PublishEvent(ctx, EventAssessmentCompleted, eventSource, map[string]interface{}{
		"assessment_id": a.ID,
		"label":         a.Label,
		"model_version": a.ModelVersion,
		"cached":        a.Cached,
		"latency_ms":    a.LatencyMs,
	})
	if err != nil {
		log.WithError(err).Warn("failed to publish assessment event")
	}
}

func (s *Service) observeFailure(log *logrus.Entry, err error) {
	var (
		numeric  *NumericParseError
		category *UnknownCategoryError
	)
	switch {
	case errors.As(err, &numeric):
		metrics.ObserveOutcome(metrics.OutcomeNumericParse)
		log.WithField("field", numeric.Field.String()).Info("numeric field not parseable")
	case errors.As(err, &category):
		metrics.ObserveOutcome(metrics.OutcomeUnknownCategory)
		log.WithFields(logrus.Fields{
			"field": category.Field.String(),
			"value": category.Value,
		}).WithError(err).Error("vocabulary and encoders disagree")
	default:
		metrics.ObserveOutcome(metrics.OutcomeInference)
		log.WithError(err).Error("prediction failed")
	}
}
