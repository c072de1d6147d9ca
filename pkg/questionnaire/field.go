package questionnaire

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field identifies one questionnaire input. The numeric value of a Field is
// its column index in the feature vector the model was trained on.
type Field int

const (
	FieldGender Field = iota
	FieldAge
	FieldHeight
	FieldWeight
	FieldFamilyHistory
	FieldHighCalorieFood
	FieldVegetables
	FieldMainMeals
	FieldBetweenMeals
	FieldSmoking
	FieldWater
	FieldCalorieMonitoring
	FieldActivity
	FieldScreenTime
	FieldAlcohol
	FieldTransport

	FieldCount int = iota
)

// Kind is the form control used to capture a field.
type Kind string

const (
	KindSelect  Kind = "select"
	KindRadio   Kind = "radio"
	KindNumeric Kind = "numeric"
)

// Encoding describes how a field becomes a number in the feature vector.
type Encoding int

const (
	// EncodingNumeric fields are parsed from free text.
	EncodingNumeric Encoding = iota
	// EncodingOrdinal fields use the fixed rank stored on each Option.
	EncodingOrdinal
	// EncodingLearned fields go through the model's label encoder.
	EncodingLearned
)

// Placeholder is the first entry of every select control. It is never a
// member of a vocabulary.
const Placeholder = "Pilih..."

// TargetColumn is the label encoder name of the predicted class.
const TargetColumn = "NObeyesdad"

// Option is one selectable answer.
type Option struct {
	Label     string `json:"label"`
	Canonical string `json:"canonical,omitempty"`
	Ordinal   int    `json:"ordinal,omitempty"`
}

// FieldSpec is the immutable definition of a field.
type FieldSpec struct {
	Field    Field
	Name     string
	Column   string
	Kind     Kind
	Encoding Encoding
	Options  []Option
}

var (
	yesNo = []Option{
		{Label: "Ya", Canonical: "yes"},
		{Label: "Tidak", Canonical: "no"},
	}
	frequency = []Option{
		{Label: "Tidak pernah", Canonical: "no"},
		{Label: "Kadang-kadang", Canonical: "Sometimes"},
		{Label: "Sering", Canonical: "Frequently"},
		{Label: "Selalu", Canonical: "Always"},
	}
)

var specs = [FieldCount]FieldSpec{
	FieldGender: {
		Name: "gender", Column: "Gender", Kind: KindSelect, Encoding: EncodingLearned,
		Options: []Option{
			{Label: "Laki-laki", Canonical: "Male"},
			{Label: "Perempuan", Canonical: "Female"},
		},
	},
	FieldAge:    {Name: "age", Column: "Age", Kind: KindNumeric, Encoding: EncodingNumeric},
	FieldHeight: {Name: "height", Column: "Height", Kind: KindNumeric, Encoding: EncodingNumeric},
	FieldWeight: {Name: "weight", Column: "Weight", Kind: KindNumeric, Encoding: EncodingNumeric},
	FieldFamilyHistory: {
		Name: "family_history_with_overweight", Column: "family_history_with_overweight",
		Kind: KindRadio, Encoding: EncodingLearned, Options: yesNo,
	},
	FieldHighCalorieFood: {Name: "favc", Column: "FAVC", Kind: KindRadio, Encoding: EncodingLearned, Options: yesNo},
	FieldVegetables: {
		Name: "fcvc", Column: "FCVC", Kind: KindSelect, Encoding: EncodingOrdinal,
		Options: []Option{
			{Label: "Tidak pernah", Ordinal: 1},
			{Label: "Kadang-kadang", Ordinal: 2},
			{Label: "Selalu", Ordinal: 3},
		},
	},
	FieldMainMeals: {
		Name: "ncp", Column: "NCP", Kind: KindSelect, Encoding: EncodingOrdinal,
		Options: []Option{
			{Label: "1—2", Ordinal: 1},
			{Label: "3", Ordinal: 2},
			{Label: ">3", Ordinal: 3},
		},
	},
	FieldBetweenMeals: {Name: "caec", Column: "CAEC", Kind: KindSelect, Encoding: EncodingLearned, Options: frequency},
	FieldSmoking:      {Name: "smoke", Column: "SMOKE", Kind: KindRadio, Encoding: EncodingLearned, Options: yesNo},
	FieldWater: {
		Name: "ch2o", Column: "CH2O", Kind: KindSelect, Encoding: EncodingOrdinal,
		Options: []Option{
			{Label: "<1", Ordinal: 1},
			{Label: "0—2", Ordinal: 2},
			{Label: ">2", Ordinal: 3},
		},
	},
	FieldCalorieMonitoring: {Name: "scc", Column: "SCC", Kind: KindRadio, Encoding: EncodingLearned, Options: yesNo},
	FieldActivity: {
		Name: "faf", Column: "FAF", Kind: KindSelect, Encoding: EncodingOrdinal,
		Options: []Option{
			{Label: "Tidak pernah", Ordinal: 0},
			{Label: "1—2 hari", Ordinal: 1},
			{Label: "2—4 hari", Ordinal: 2},
			{Label: "4—5 hari", Ordinal: 3},
		},
	},
	FieldScreenTime: {
		Name: "tue", Column: "TUE", Kind: KindSelect, Encoding: EncodingOrdinal,
		Options: []Option{
			{Label: "0—2 jam 0", Ordinal: 0},
			{Label: "3—5 jam 1", Ordinal: 1},
			{Label: ">5 jam 2", Ordinal: 2},
		},
	},
	FieldAlcohol: {Name: "calc", Column: "CALC", Kind: KindSelect, Encoding: EncodingLearned, Options: frequency},
	FieldTransport: {
		Name: "mtrans", Column: "MTRANS", Kind: KindSelect, Encoding: EncodingLearned,
		Options: []Option{
			{Label: "Mobil pribadi", Canonical: "Automobile"},
			{Label: "Sepeda", Canonical: "Bike"},
			{Label: "Sepeda motor", Canonical: "Motorbike"},
			{Label: "Transportasi umum", Canonical: "Public_Transportation"},
			{Label: "Berjalan kaki", Canonical: "Walking"},
		},
	},
}

var byName = func() map[string]Field {
	m := make(map[string]Field, FieldCount)
	for i := range specs {
		specs[i].Field = Field(i)
		m[specs[i].Name] = Field(i)
	}
	return m
}()

// Fields returns every field in model column order.
func Fields() []Field {
	out := make([]Field, FieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Columns returns the model column names in order.
func Columns() []string {
	out := make([]string, FieldCount)
	for i := range specs {
		out[i] = specs[i].Column
	}
	return out
}

// Lookup resolves a form key such as "favc" to its Field.
func Lookup(name string) (Field, bool) {
	f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

func (f Field) Valid() bool {
	return f >= 0 && int(f) < FieldCount
}

// Spec returns the definition of f. It panics on an out of range Field.
func (f Field) Spec() FieldSpec {
	if !f.Valid() {
		panic(fmt.Sprintf("questionnaire: unknown field %d", int(f)))
	}
	return specs[f]
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return specs[f].Name
}

// Column is the model-facing feature name.
func (f Field) Column() string {
	return f.Spec().Column
}

// Categorical reports whether the field has a closed vocabulary.
func (f Field) Categorical() bool {
	return f.Spec().Kind != KindNumeric
}

// Vocabulary returns the UI-facing labels in display order.
func (f Field) Vocabulary() []string {
	opts := f.Spec().Options
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

// Choices returns the labels a select control shows, placeholder included.
func (f Field) Choices() []string {
	spec := f.Spec()
	switch spec.Kind {
	case KindSelect:
		return append([]string{Placeholder}, f.Vocabulary()...)
	case KindRadio:
		return f.Vocabulary()
	default:
		return nil
	}
}

// Option finds the answer whose label matches value after Unicode
// normalization.
func (f Field) Option(value string) (Option, bool) {
	value = Normalize(value)
	for _, o := range f.Spec().Options {
		if o.Label == value {
			return o, true
		}
	}
	return Option{}, false
}

// Allowed reports whether value is a member of the field's vocabulary.
func (f Field) Allowed(value string) bool {
	_, ok := f.Option(value)
	return ok
}

// Normalize applies NFKC so full-width and other compatibility forms of a
// label compare equal to it.
func Normalize(value string) string {
	return norm.NFKC.String(value)
}
