package screening

import (
	"errors"
	"fmt"

	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/encoding"
	"github.com/synaptica-ai/obesity-check/pkg/serving/predictor"
)

type Prediction = models.Prediction

// Predict runs model on the single row vec and decodes the first class. Any
// failure, panics included, is reported as an InferenceError.
func Predict(model predictor.Classifier, encoders *encoding.Registry, vec FeatureVector) (pred Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred = Prediction{}
			err = &InferenceError{Err: fmt.Errorf("model panicked: %v", r)}
		}
	}()

	rows := [][]float64{vec.Row()}
	classes, err := model.Predict(rows)
	if err != nil {
		return Prediction{}, &InferenceError{Err: err}
	}
	if len(classes) == 0 {
		return Prediction{}, &InferenceError{Err: errors.New("model returned no prediction")}
	}
	label, err := encoders.Decode(classes[0])
	if err != nil {
		return Prediction{}, &InferenceError{Err: err}
	}
	pred = Prediction{Label: label}

	if prob, ok := model.(predictor.ProbabilisticClassifier); ok {
		probas, err := prob.PredictProba(rows)
		if err != nil || len(probas) == 0 {
			return pred, nil
		}
		pred.Probabilities = make(map[string]float64, len(probas[0]))
		for i, class := range prob.Classes() {
			if i >= len(probas[0]) {
				break
			}
			if name, err := encoders.Decode(class); err == nil {
				pred.Probabilities[name] = probas[0][i]
			}
		}
		pred.Confidence = pred.Probabilities[label]
	}
	return pred, nil
}
