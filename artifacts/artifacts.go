// Package artifacts embeds the default classifier and label encoders so the
// service and CLI run without external files.
package artifacts

import _ "embed"

const (
	ModelFile    = "model_random_forest.json"
	EncodersFile = "label_encoders.yaml"
)

//go:embed model_random_forest.json
var Model []byte

//go:embed label_encoders.yaml
var Encoders []byte
