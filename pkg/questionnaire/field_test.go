package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsFollowModelOrder(t *testing.T) {
	want := []string{
		"Gender", "Age", "Height", "Weight", "family_history_with_overweight", "FAVC",
		"FCVC", "NCP", "CAEC", "SMOKE", "CH2O", "SCC", "FAF", "TUE", "CALC", "MTRANS",
	}
	assert.Equal(t, want, Columns())
	assert.Equal(t, 16, FieldCount)
}

func TestEveryFieldIsDefined(t *testing.T) {
	for _, f := range Fields() {
		spec := f.Spec()
		assert.Equal(t, f, spec.Field)
		assert.NotEmpty(t, spec.Name)
		assert.NotEmpty(t, spec.Column)

		if spec.Kind == KindNumeric {
			assert.Empty(t, spec.Options, f.String())
			continue
		}
		require.NotEmpty(t, spec.Options, f.String())
		for _, o := range spec.Options {
			switch spec.Encoding {
			case EncodingLearned:
				assert.NotEmpty(t, o.Canonical, "%s/%s", f, o.Label)
			case EncodingOrdinal:
				assert.Empty(t, o.Canonical, "%s/%s", f, o.Label)
			}
		}
	}
}

func TestPlaceholderIsNeverAllowed(t *testing.T) {
	for _, f := range Fields() {
		assert.False(t, f.Allowed(Placeholder), f.String())
	}
}

func TestChoicesStartWithPlaceholderForSelects(t *testing.T) {
	assert.Equal(t, []string{Placeholder, "Laki-laki", "Perempuan"}, FieldGender.Choices())
	assert.Equal(t, []string{"Ya", "Tidak"}, FieldSmoking.Choices())
	assert.Nil(t, FieldAge.Choices())
}

func TestOrdinalRanks(t *testing.T) {
	cases := []struct {
		field Field
		label string
		want  int
	}{
		{FieldVegetables, "Selalu", 3},
		{FieldVegetables, "Tidak pernah", 1},
		{FieldMainMeals, ">3", 3},
		{FieldMainMeals, "3", 2},
		{FieldWater, "<1", 1},
		{FieldWater, "0—2", 2},
		{FieldActivity, "Tidak pernah", 0},
		{FieldActivity, "4—5 hari", 3},
		{FieldScreenTime, ">5 jam 2", 2},
	}
	for _, tc := range cases {
		o, ok := tc.field.Option(tc.label)
		require.True(t, ok, "%s/%s", tc.field, tc.label)
		assert.Equal(t, tc.want, o.Ordinal, "%s/%s", tc.field, tc.label)
	}
}

func TestLookupByFormKey(t *testing.T) {
	f, ok := Lookup(" FAVC ")
	require.True(t, ok)
	assert.Equal(t, FieldHighCalorieFood, f)

	_, ok = Lookup("bmi")
	assert.False(t, ok)
}

func TestDefaultCatalogCoversEveryField(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	form := cat.Form()
	assert.Equal(t, "Cek Obesitas", form.Title)
	require.Len(t, form.Fields, FieldCount)
	assert.Equal(t, "gender", form.Fields[0].Name)
	assert.Equal(t, "Jenis Kelamin", form.Fields[0].Label)
	assert.Equal(t, "Masukkan umur Anda", form.Fields[1].Placeholder)
}

func TestParseCatalogRejectsMissingPrompt(t *testing.T) {
	_, err := ParseCatalog([]byte("title: x\nprompts:\n  gender:\n    label: Jenis Kelamin\n"))
	assert.Error(t, err)
}
