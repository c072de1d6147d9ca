package screening

import (
	"errors"
	"fmt"

	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
)

const (
	msgIncomplete    = "Silakan lengkapi semua pilihan dan isi semua bidang sebelum melakukan prediksi."
	msgPreprocessing = "Terjadi kesalahan saat memproses input. Silakan coba lagi."
	msgPrediction    = "Terjadi kesalahan saat melakukan prediksi. Silakan coba lagi."
)

var numericLabels = map[questionnaire.Field]string{
	questionnaire.FieldAge:    "Umur",
	questionnaire.FieldHeight: "Tinggi Badan",
	questionnaire.FieldWeight: "Berat Badan",
}

// ValidationError means the submission is incomplete or holds a value outside
// a field's vocabulary. The reason is for logs only.
type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NumericParseError means a numeric field could not be read as a finite number.
type NumericParseError struct {
	Field questionnaire.Field
	Value string
	Err   error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q as a number: %v", e.Field, e.Value, e.Err)
}

func (e *NumericParseError) Unwrap() error {
	return e.Err
}

// UnknownCategoryError means a canonical label has no code in its encoder.
// The vocabulary tables and the encoder artifact disagree.
type UnknownCategoryError struct {
	Field questionnaire.Field
	Value string
	Err   error
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("field %s: no encoding for %q: %v", e.Field, e.Value, e.Err)
}

func (e *UnknownCategoryError) Unwrap() error {
	return e.Err
}

// InferenceError wraps any failure of the model call or of decoding its output.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the person filling in the form.
func UserMessage(err error) string {
	var (
		numeric  *NumericParseError
		category *UnknownCategoryError
	)
	switch {
	case err == nil:
		return ""
	case IsValidationError(err):
		return msgIncomplete
	case errors.As(err, &numeric):
		label, ok := numericLabels[numeric.Field]
		if !ok {
			label = numeric.Field.String()
		}
		return fmt.Sprintf("%s harus berupa angka yang valid.", label)
	case errors.As(err, &category):
		return msgPreprocessing
	default:
		return msgPrediction
	}
}
