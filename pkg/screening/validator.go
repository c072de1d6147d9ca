package screening

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
)

// Validator is the gate in front of translation: every categorical value must
// belong to its vocabulary and every numeric value must be non-blank.
type Validator struct {
	validate      *validator.Validate
	strictNumeric bool
}

type ValidatorOption func(*Validator)

// WithStrictNumeric also rejects numeric fields that do not look like numbers,
// instead of leaving that to translation.
func WithStrictNumeric(strict bool) ValidatorOption {
	return func(v *Validator) { v.strictNumeric = strict }
}

func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	_ = v.validate.RegisterValidation("vocab", validateVocabulary)
	_ = v.validate.RegisterValidation("notblank", validateNotBlank)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// validateVocabulary checks membership in the vocabulary named by the tag
// parameter, e.g. `validate:"vocab=favc"`.
func validateVocabulary(fl validator.FieldLevel) bool {
	f, ok := questionnaire.Lookup(fl.Param())
	if !ok || !f.Categorical() {
		return false
	}
	return f.Allowed(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Valid reports whether raw may be translated.
func (v *Validator) Valid(raw models.RawSubmission) bool {
	return v.Validate(raw) == nil
}

// Validate returns a ValidationError naming every failing field.
func (v *Validator) Validate(raw models.RawSubmission) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}

	var failed []string
	if err := v.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ValidationError{reason: err}
		}
		for _, fe := range verrs {
			failed = append(failed, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
	}

	if v.strictNumeric {
		for _, f := range []questionnaire.Field{questionnaire.FieldAge, questionnaire.FieldHeight, questionnaire.FieldWeight} {
			value := strings.TrimSpace(questionnaire.Normalize(raw.Value(f)))
			if value == "" {
				continue
			}
			if err := v.validate.Var(value, "numeric"); err != nil {
				failed = append(failed, fmt.Sprintf("%s(numeric)", f))
			}
		}
	}

	if len(failed) > 0 {
		return ValidationError{reason: fmt.Errorf("invalid fields: %s", strings.Join(failed, ", "))}
	}
	return nil
}
