package models

import (
	"time"

	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
)

// RawSubmission is the questionnaire exactly as captured by the form. Every
// value is a string, numeric fields included.
type RawSubmission struct {
	Gender            string `json:"gender" validate:"vocab=gender"`
	Age               string `json:"age" validate:"notblank"`
	Height            string `json:"height" validate:"notblank"`
	Weight            string `json:"weight" validate:"notblank"`
	FamilyHistory     string `json:"family_history_with_overweight" validate:"vocab=family_history_with_overweight"`
	HighCalorieFood   string `json:"favc" validate:"vocab=favc"`
	Vegetables        string `json:"fcvc" validate:"vocab=fcvc"`
	MainMeals         string `json:"ncp" validate:"vocab=ncp"`
	BetweenMeals      string `json:"caec" validate:"vocab=caec"`
	Smoking           string `json:"smoke" validate:"vocab=smoke"`
	Water             string `json:"ch2o" validate:"vocab=ch2o"`
	CalorieMonitoring string `json:"scc" validate:"vocab=scc"`
	Activity          string `json:"faf" validate:"vocab=faf"`
	ScreenTime        string `json:"tue" validate:"vocab=tue"`
	Alcohol           string `json:"calc" validate:"vocab=calc"`
	Transport         string `json:"mtrans" validate:"vocab=mtrans"`
}

func (s *RawSubmission) field(f questionnaire.Field) *string {
	switch f {
	case questionnaire.FieldGender:
		return &s.Gender
	case questionnaire.FieldAge:
		return &s.Age
	case questionnaire.FieldHeight:
		return &s.Height
	case questionnaire.FieldWeight:
		return &s.Weight
	case questionnaire.FieldFamilyHistory:
		return &s.FamilyHistory
	case questionnaire.FieldHighCalorieFood:
		return &s.HighCalorieFood
	case questionnaire.FieldVegetables:
		return &s.Vegetables
	case questionnaire.FieldMainMeals:
		return &s.MainMeals
	case questionnaire.FieldBetweenMeals:
		return &s.BetweenMeals
	case questionnaire.FieldSmoking:
		return &s.Smoking
	case questionnaire.FieldWater:
		return &s.Water
	case questionnaire.FieldCalorieMonitoring:
		return &s.CalorieMonitoring
	case questionnaire.FieldActivity:
		return &s.Activity
	case questionnaire.FieldScreenTime:
		return &s.ScreenTime
	case questionnaire.FieldAlcohol:
		return &s.Alcohol
	case questionnaire.FieldTransport:
		return &s.Transport
	}
	return nil
}

// Value returns the raw value of f, or "" for an unknown field.
func (s RawSubmission) Value(f questionnaire.Field) string {
	if p := s.field(f); p != nil {
		return *p
	}
	return ""
}

func (s *RawSubmission) Set(f questionnaire.Field, value string) {
	if p := s.field(f); p != nil {
		*p = value
	}
}

// SubmissionFromValues builds a submission from form keys. Unknown keys are
// ignored; missing keys stay empty.
func SubmissionFromValues(values map[string]string) RawSubmission {
	var s RawSubmission
	for key, value := range values {
		if f, ok := questionnaire.Lookup(key); ok {
			s.Set(f, value)
		}
	}
	return s
}

// Values is the inverse of SubmissionFromValues.
func (s RawSubmission) Values() map[string]string {
	out := make(map[string]string, questionnaire.FieldCount)
	for _, f := range questionnaire.Fields() {
		out[f.String()] = s.Value(f)
	}
	return out
}

// Feature is one column of an assembled feature vector.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Prediction is the decoded model output for one feature row.
type Prediction struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// Assessment is the displayable outcome of one submission.
type Assessment struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Features      []Feature          `json:"features"`
	ModelVersion  string             `json:"model_version"`
	Cached        bool               `json:"cached"`
	LatencyMs     float64            `json:"latency_ms"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
