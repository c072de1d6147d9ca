package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryLoads(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "NObeyesdad", reg.Target().Name())
	assert.Len(t, reg.Checksum(), 64)
	assert.Contains(t, reg.Names(), "MTRANS")
}

func TestTargetRoundTrip(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	for _, label := range reg.Target().Classes() {
		code, err := reg.Target().Encode(label)
		require.NoError(t, err)
		decoded, err := reg.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, label, decoded)
	}
}

func TestEncodeFollowsClassOrder(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	code, err := reg.Encode("Gender", "Male")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = reg.Encode("CAEC", "Sometimes")
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	code, err = reg.Encode("MTRANS", "Automobile")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestEncodeUnknown(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	_, err = reg.Encode("Gender", "Other")
	assert.True(t, errors.Is(err, ErrUnknownLabel))

	_, err = reg.Encode("BMI", "x")
	assert.True(t, errors.Is(err, ErrUnknownEncoder))

	_, err = reg.Decode(7)
	assert.True(t, errors.Is(err, ErrUnknownCode))
	_, err = reg.Decode(-1)
	assert.True(t, errors.Is(err, ErrUnknownCode))
}

func TestParseRejectsBadArtifacts(t *testing.T) {
	cases := map[string]string{
		"missing target":  "encoders:\n  Gender: [Female, Male]\n",
		"target absent":   "target: Y\nencoders:\n  Gender: [Female, Male]\n",
		"duplicate class": "target: Y\nencoders:\n  Y: [a, a]\n",
		"empty class set": "target: Y\nencoders:\n  Y: []\n",
		"not yaml":        "target: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	assert.Error(t, err)
}
