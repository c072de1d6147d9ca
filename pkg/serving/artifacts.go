package serving

import (
	"fmt"

	"github.com/synaptica-ai/obesity-check/pkg/encoding"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
	"github.com/synaptica-ai/obesity-check/pkg/serving/predictor"
)

// Bundle is the model and encoder state loaded once at process start. It is
// never mutated afterwards and may be shared across requests.
type Bundle struct {
	Model    *predictor.Forest
	Encoders *encoding.Registry
}

// LoadBundle loads both artifacts and checks that they agree with each other
// and with the questionnaire. Empty paths select the embedded defaults.
func LoadBundle(modelPath, encodersPath string) (*Bundle, error) {
	model, err := predictor.Load(modelPath)
	if err != nil {
		return nil, err
	}
	encoders, err := encoding.Load(encodersPath)
	if err != nil {
		return nil, err
	}
	b := &Bundle{Model: model, Encoders: encoders}
	if err := b.Check(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) Check() error {
	columns := questionnaire.Columns()
	features := b.Model.FeatureNames()
	if len(features) != len(columns) {
		return fmt.Errorf("model expects %d features, questionnaire provides %d", len(features), len(columns))
	}
	for i := range columns {
		if features[i] != columns[i] {
			return fmt.Errorf("model column %d is %s, questionnaire column is %s", i, features[i], columns[i])
		}
	}

	for _, f := range questionnaire.Fields() {
		spec := f.Spec()
		if spec.Encoding != questionnaire.EncodingLearned {
			continue
		}
		for _, opt := range spec.Options {
			if _, err := b.Encoders.Encode(spec.Column, opt.Canonical); err != nil {
				return fmt.Errorf("field %s option %q: %w", spec.Name, opt.Label, err)
			}
		}
	}

	if name := b.Encoders.Target().Name(); name != questionnaire.TargetColumn {
		return fmt.Errorf("encoders target is %s, want %s", name, questionnaire.TargetColumn)
	}
	for _, class := range b.Model.Classes() {
		if _, err := b.Encoders.Decode(class); err != nil {
			return fmt.Errorf("model class: %w", err)
		}
	}
	return nil
}

// Version identifies the loaded pair of artifacts.
func (b *Bundle) Version() string {
	v := b.Model.Version()
	if v == "" {
		v = "unversioned"
	}
	return fmt.Sprintf("%s+%s", v, shortSum(b.Model.Checksum()))
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
