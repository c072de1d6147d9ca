package serving

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/obesity-check/artifacts"
)

func TestLoadDefaultBundle(t *testing.T) {
	b, err := LoadBundle("", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.Version(), "2024.12-rf3+"))

	release := NewRelease(b)
	assert.Equal(t, b.Model.Checksum(), release.ModelChecksum)
	assert.Equal(t, b.Encoders.Checksum(), release.EncodersChecksum)
	assert.Equal(t, 3, release.TreeCount)
	assert.Equal(t, "model_releases", release.TableName())
}

func TestLoadBundleRejectsMissingEncoder(t *testing.T) {
	dir := t.TempDir()
	encoders := strings.Replace(string(artifacts.Encoders),
		"  MTRANS: [Automobile, Bike, Motorbike, Public_Transportation, Walking]\n", "", 1)
	path := filepath.Join(dir, artifacts.EncodersFile)
	require.NoError(t, os.WriteFile(path, []byte(encoders), 0o644))

	_, err := LoadBundle("", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mtrans")
}

func TestLoadBundleRejectsColumnOrder(t *testing.T) {
	dir := t.TempDir()
	model := strings.Replace(string(artifacts.Model), `"Gender", "Age"`, `"Age", "Gender"`, 1)
	path := filepath.Join(dir, artifacts.ModelFile)
	require.NoError(t, os.WriteFile(path, []byte(model), 0o644))

	_, err := LoadBundle(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 0")
}

func TestLoadBundleRejectsForeignTarget(t *testing.T) {
	dir := t.TempDir()
	encoders := strings.NewReplacer(
		"target: NObeyesdad", "target: ObesityLevel",
		"  NObeyesdad:", "  ObesityLevel:",
	).Replace(string(artifacts.Encoders))
	path := filepath.Join(dir, artifacts.EncodersFile)
	require.NoError(t, os.WriteFile(path, []byte(encoders), 0o644))

	_, err := LoadBundle("", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want NObeyesdad")
}
