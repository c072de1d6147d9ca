package encoding

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/synaptica-ai/obesity-check/artifacts"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownLabel   = errors.New("label not seen by encoder")
	ErrUnknownCode    = errors.New("code out of encoder range")
	ErrUnknownEncoder = errors.New("no encoder registered")
)

// LabelEncoder maps between category labels and the integer codes a model
// was fit on. The code of a label is its position in Classes.
type LabelEncoder struct {
	name    string
	classes []string
	index   map[string]int
}

func NewLabelEncoder(name string, classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder %s has no classes", name)
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("encoder %s lists %q twice", name, c)
		}
		index[c] = i
	}
	return &LabelEncoder{
		name:    name,
		classes: append([]string(nil), classes...),
		index:   index,
	}, nil
}

func (e *LabelEncoder) Name() string { return e.name }

func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *LabelEncoder) Encode(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%s %q: %w", e.name, label, ErrUnknownLabel)
	}
	return code, nil
}

func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("%s %d: %w", e.name, code, ErrUnknownCode)
	}
	return e.classes[code], nil
}

// Registry is the read-only set of encoders loaded at startup.
type Registry struct {
	target   string
	encoders map[string]*LabelEncoder
	checksum string
}

type document struct {
	Target   string              `yaml:"target"`
	Encoders map[string][]string `yaml:"encoders"`
}

// Load reads an encoder artifact. An empty path selects the embedded default.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(artifacts.Encoders)
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read encoders: %w", err)
	}
	return Parse(content)
}

func Parse(content []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode encoders: %w", err)
	}
	if doc.Target == "" {
		return nil, errors.New("encoders artifact missing target")
	}
	if len(doc.Encoders) == 0 {
		return nil, errors.New("encoders artifact empty")
	}

	reg := &Registry{
		target:   doc.Target,
		encoders: make(map[string]*LabelEncoder, len(doc.Encoders)),
	}
	for name, classes := range doc.Encoders {
		enc, err := NewLabelEncoder(name, classes)
		if err != nil {
			return nil, err
		}
		reg.encoders[name] = enc
	}
	if _, ok := reg.encoders[doc.Target]; !ok {
		return nil, fmt.Errorf("target %s: %w", doc.Target, ErrUnknownEncoder)
	}
	sum := sha256.Sum256(content)
	reg.checksum = hex.EncodeToString(sum[:])
	return reg, nil
}

func (r *Registry) Encoder(name string) (*LabelEncoder, error) {
	enc, ok := r.encoders[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownEncoder)
	}
	return enc, nil
}

func (r *Registry) Encode(name, label string) (int, error) {
	enc, err := r.Encoder(name)
	if err != nil {
		return 0, err
	}
	return enc.Encode(label)
}

// Target returns the encoder of the predicted class.
func (r *Registry) Target() *LabelEncoder {
	return r.encoders[r.target]
}

// Decode turns a predicted class code into its label.
func (r *Registry) Decode(code int) (string, error) {
	return r.Target().Decode(code)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Checksum is the SHA-256 of the artifact the registry was parsed from.
func (r *Registry) Checksum() string {
	return r.checksum
}
