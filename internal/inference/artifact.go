package inference

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"shelfpulse/internal/features"
)

// Artifact types understood by the loader.
const (
	ArtifactLinear       = "linear"
	ArtifactLogistic     = "logistic"
	ArtifactSoftmax      = "softmax"
	ArtifactTreeEnsemble = "tree_ensemble"
)

type artifactFile struct {
	Type       string          `json:"type"`
	Intercept  float64         `json:"intercept"`
	Intercepts []float64       `json:"intercepts"`
	Coef       json.RawMessage `json:"coef"`
	Features   int             `json:"n_features"`
	Classes    int             `json:"n_classes"`
	Trees      []Tree          `json:"trees"`
}

// Manifest describes where the trained artifacts of every model live.
type Manifest struct {
	Version string                             `yaml:"version"`
	Models  map[features.ModelName]ModelEntry `yaml:"models"`
}

// ModelEntry names the artifact of one model and, for label-decoding
// classifiers, its encoder.
type ModelEntry struct {
	Artifact string `yaml:"artifact"`
	Encoder  string `yaml:"encoder,omitempty"`
}

// LoadManifest reads a YAML manifest. Artifact paths are relative to the manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model manifest: %w", err)
	}
	return &m, nil
}

// LoadModels reads the manifest and every artifact it references.
func LoadModels(manifestPath string) (*Models, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(manifestPath)

	entry := func(name features.ModelName) (ModelEntry, error) {
		e, ok := manifest.Models[name]
		if !ok || e.Artifact == "" {
			return ModelEntry{}, fmt.Errorf("model manifest has no artifact for %s", name)
		}
		return e, nil
	}
	regressor := func(name features.ModelName) (Regressor, error) {
		e, err := entry(name)
		if err != nil {
			return nil, err
		}
		m, err := loadArtifact(filepath.Join(dir, e.Artifact))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r, ok := m.(Regressor)
		if !ok {
			return nil, fmt.Errorf("%s: artifact %s is not a regressor", name, e.Artifact)
		}
		return r, nil
	}
	classifier := func(name features.ModelName) (Classifier, *LabelEncoder, error) {
		e, err := entry(name)
		if err != nil {
			return nil, nil, err
		}
		m, err := loadArtifact(filepath.Join(dir, e.Artifact))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		c, ok := m.(Classifier)
		if !ok {
			return nil, nil, fmt.Errorf("%s: artifact %s is not a classifier", name, e.Artifact)
		}
		if e.Encoder == "" {
			return c, nil, nil
		}
		enc, err := LoadLabelEncoder(filepath.Join(dir, e.Encoder))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		return c, enc, nil
	}

	models := &Models{Version: manifest.Version}
	if models.Spoilage, models.SpoilageEncoder, err = classifier(features.ModelSpoilage); err != nil {
		return nil, err
	}
	if models.Expiry, err = regressor(features.ModelExpiry); err != nil {
		return nil, err
	}
	if models.Demand, err = regressor(features.ModelDemand); err != nil {
		return nil, err
	}
	if models.DeadStock, _, err = classifier(features.ModelDeadStock); err != nil {
		return nil, err
	}
	if models.Markdown, err = regressor(features.ModelMarkdown); err != nil {
		return nil, err
	}
	if models.Sustainability, models.SustainabilityEncoder, err = classifier(features.ModelSustainability); err != nil {
		return nil, err
	}
	return models, nil
}

// LoadLabelEncoder reads a JSON label encoder artifact.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoder: %w", err)
	}
	var enc LabelEncoder
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("failed to parse encoder %s: %w", filepath.Base(path), err)
	}
	if len(enc.Classes) == 0 {
		return nil, fmt.Errorf("encoder %s has no classes", filepath.Base(path))
	}
	return &enc, nil
}

func loadArtifact(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return decodeArtifact(data)
}

func decodeArtifact(data []byte) (any, error) {
	var a artifactFile
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	switch a.Type {
	case ArtifactLinear, ArtifactLogistic:
		var coef []float64
		if err := json.Unmarshal(a.Coef, &coef); err != nil {
			return nil, fmt.Errorf("%s artifact: coef must be a vector: %w", a.Type, err)
		}
		if len(coef) == 0 {
			return nil, fmt.Errorf("%s artifact has no coefficients", a.Type)
		}
		if a.Type == ArtifactLinear {
			return &LinearRegressor{Intercept: a.Intercept, Coef: coef}, nil
		}
		return &LogisticClassifier{Intercept: a.Intercept, Coef: coef}, nil
	case ArtifactSoftmax:
		var coef [][]float64
		if err := json.Unmarshal(a.Coef, &coef); err != nil {
			return nil, fmt.Errorf("softmax artifact: coef must be a matrix: %w", err)
		}
		return NewSoftmaxClassifier(a.Intercepts, coef)
	case ArtifactTreeEnsemble:
		m := &TreeEnsemble{Features: a.Features, Classes: a.Classes, Trees: a.Trees}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown artifact type %q", a.Type)
	}
}
