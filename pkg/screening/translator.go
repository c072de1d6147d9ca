package screening

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/encoding"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
)

var errNotFinite = errors.New("value is not finite")

// FeatureVector is a single model input row indexed by questionnaire.Field,
// which is also the model's column order.
type FeatureVector [questionnaire.FieldCount]float64

func (v FeatureVector) Get(f questionnaire.Field) float64 {
	return v[f]
}

// Row returns the vector as a slice for the classifier.
func (v FeatureVector) Row() []float64 {
	row := make([]float64, len(v))
	copy(row, v[:])
	return row
}

// Features pairs each value with its column name, in column order.
func (v FeatureVector) Features() []models.Feature {
	out := make([]models.Feature, len(v))
	for i, value := range v {
		out[i] = models.Feature{Name: questionnaire.Field(i).Column(), Value: value}
	}
	return out
}

// Translator turns validated UI answers into model features.
type Translator struct {
	encoders *encoding.Registry
}

func NewTranslator(encoders *encoding.Registry) *Translator {
	return &Translator{encoders: encoders}
}

// Translate builds the feature vector for raw. The caller must have validated
// raw first. Nothing is returned alongside an error.
func (t *Translator) Translate(raw models.RawSubmission) (FeatureVector, error) {
	var vec FeatureVector

	age, err := parseAge(raw.Value(questionnaire.FieldAge))
	if err != nil {
		return FeatureVector{}, err
	}
	height, err := parseMeasure(questionnaire.FieldHeight, raw.Value(questionnaire.FieldHeight))
	if err != nil {
		return FeatureVector{}, err
	}
	weight, err := parseMeasure(questionnaire.FieldWeight, raw.Value(questionnaire.FieldWeight))
	if err != nil {
		return FeatureVector{}, err
	}
	vec[questionnaire.FieldAge] = float64(age)
	vec[questionnaire.FieldHeight] = height / 100
	vec[questionnaire.FieldWeight] = weight

	for _, f := range questionnaire.Fields() {
		spec := f.Spec()
		if spec.Encoding == questionnaire.EncodingNumeric {
			continue
		}
		value := raw.Value(f)
		opt, ok := f.Option(value)
		if !ok {
			return FeatureVector{}, &UnknownCategoryError{Field: f, Value: value, Err: fmt.Errorf("not in vocabulary")}
		}
		switch spec.Encoding {
		case questionnaire.EncodingOrdinal:
			vec[f] = float64(opt.Ordinal)
		case questionnaire.EncodingLearned:
			code, err := t.encoders.Encode(spec.Column, opt.Canonical)
			if err != nil {
				return FeatureVector{}, &UnknownCategoryError{Field: f, Value: opt.Canonical, Err: err}
			}
			vec[f] = float64(code)
		}
	}
	return vec, nil
}

// numericText folds full-width digits and signs to ASCII, the same NFKC pass
// categorical answers get, and trims whitespace.
func numericText(value string) string {
	return strings.TrimSpace(questionnaire.Normalize(value))
}

func parseAge(value string) (int, error) {
	age, err := strconv.Atoi(numericText(value))
	if err != nil {
		return 0, &NumericParseError{Field: questionnaire.FieldAge, Value: value, Err: err}
	}
	return age, nil
}

func parseMeasure(f questionnaire.Field, value string) (float64, error) {
	n, err := strconv.ParseFloat(numericText(value), 64)
	if err != nil {
		return 0, &NumericParseError{Field: f, Value: value, Err: err}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &NumericParseError{Field: f, Value: value, Err: errNotFinite}
	}
	return n, nil
}
