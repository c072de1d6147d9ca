package predictor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/synaptica-ai/obesity-check/artifacts"
)

var ErrShape = errors.New("row does not match model features")

// Classifier is the inference surface of a loaded model.
type Classifier interface {
	Predict(rows [][]float64) ([]int, error)
}

// ProbabilisticClassifier also exposes per-class probabilities, index-aligned
// with Classes.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(rows [][]float64) ([][]float64, error)
	Classes() []int
}

type Artifact struct {
	Model struct {
		Type         string   `json:"type"`
		Algorithm    string   `json:"algorithm"`
		Version      string   `json:"version"`
		FeatureNames []string `json:"feature_names"`
		Classes      []int    `json:"classes"`
		Trees        []Tree   `json:"trees"`
	} `json:"model"`
}

// Tree is a fitted decision tree in parallel-array form. Node 0 is the root;
// a node whose left child is -1 is a leaf.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest is an immutable random forest. It is safe for concurrent use.
type Forest struct {
	algorithm string
	version   string
	features  []string
	classes   []int
	trees     []Tree
	checksum  string
}

// Load reads a forest artifact. An empty path selects the embedded default.
func Load(path string) (*Forest, error) {
	if path == "" {
		return Parse(artifacts.Model)
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return Parse(content)
}

func Parse(content []byte) (*Forest, error) {
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	m := artifact.Model
	if len(m.FeatureNames) == 0 {
		return nil, fmt.Errorf("artifact missing feature names")
	}
	if len(m.Classes) == 0 {
		return nil, fmt.Errorf("artifact missing classes")
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("artifact has no trees")
	}
	for i, tree := range m.Trees {
		if err := tree.check(len(m.FeatureNames), len(m.Classes)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	sum := sha256.Sum256(content)
	return &Forest{
		algorithm: m.Algorithm,
		version:   m.Version,
		features:  m.FeatureNames,
		classes:   m.Classes,
		trees:     m.Trees,
		checksum:  hex.EncodeToString(sum[:]),
	}, nil
}

// check rejects trees that would index out of range or never reach a leaf.
func (t Tree) check(featureCount, classCount int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for node := 0; node < n; node++ {
		left, right := t.ChildrenLeft[node], t.ChildrenRight[node]
		if left == -1 {
			if right != -1 {
				return fmt.Errorf("node %d has one child", node)
			}
			if len(t.Value[node]) != classCount {
				return fmt.Errorf("leaf %d has %d values, want %d", node, len(t.Value[node]), classCount)
			}
			continue
		}
		if left <= node || right <= node || left >= n || right >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", node, left, right)
		}
		if f := t.Feature[node]; f < 0 || f >= featureCount {
			return fmt.Errorf("node %d splits on feature %d", node, f)
		}
	}
	return nil
}

func (t Tree) leaf(row []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if row[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

func (f *Forest) FeatureNames() []string {
	return append([]string(nil), f.features...)
}

func (f *Forest) Classes() []int {
	return append([]int(nil), f.classes...)
}

func (f *Forest) TreeCount() int    { return len(f.trees) }
func (f *Forest) Algorithm() string { return f.algorithm }
func (f *Forest) Version() string   { return f.version }
func (f *Forest) Checksum() string  { return f.checksum }

// PredictProba averages the normalized leaf distributions of every tree.
func (f *Forest) PredictProba(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(f.features) {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), len(f.features), ErrShape)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d feature %s is not finite: %w", i, f.features[j], ErrShape)
			}
		}
		proba := make([]float64, len(f.classes))
		for _, tree := range f.trees {
			value := tree.leaf(row)
			var total float64
			for _, v := range value {
				total += v
			}
			if total <= 0 {
				continue
			}
			for k, v := range value {
				proba[k] += v / total
			}
		}
		for k := range proba {
			proba[k] /= float64(len(f.trees))
		}
		out[i] = proba
	}
	return out, nil
}

// Predict returns the class code with the highest mean probability for each
// row. Ties resolve to the lowest class index.
func (f *Forest) Predict(rows [][]float64) ([]int, error) {
	probas, err := f.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probas))
	for i, proba := range probas {
		out[i] = f.classes[argmax(proba)]
	}
	return out, nil
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
