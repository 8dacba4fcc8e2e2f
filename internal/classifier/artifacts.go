package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"elevatr.app/predictor/internal/model"
)

const (
	ScalerFile       = "scaler.json"
	LabelEncoderFile = "label_encoder.json"
	ModelFile        = "model.json"
)

type ModelKind string

const (
	// ModelKindLogistic is a multinomial logistic regression; it exposes
	// class probabilities through softmax.
	ModelKindLogistic ModelKind = "logistic_regression"
	// ModelKindLinear is a linear decision function without probabilities.
	ModelKindLinear ModelKind = "linear"
)

// ScalerArtifact holds fitted StandardScaler parameters in FeatureNames order.
type ScalerArtifact struct {
	Mean  []float64 `json:"mean" jsonschema:"minItems=9,maxItems=9"`
	Scale []float64 `json:"scale" jsonschema:"minItems=9,maxItems=9"`
}

// LabelEncoderArtifact maps encoded class indexes back to grade labels.
type LabelEncoderArtifact struct {
	Classes []string `json:"classes" jsonschema:"minItems=2,uniqueItems=true"`
}

// ModelArtifact is a linear classifier over scaled features: one coefficient
// row and one intercept per class, in LabelEncoderArtifact.Classes order.
type ModelArtifact struct {
	Kind      ModelKind   `json:"kind" jsonschema:"enum=logistic_regression,enum=linear"`
	Version   string      `json:"version,omitempty"`
	Coef      [][]float64 `json:"coef" jsonschema:"minItems=2"`
	Intercept []float64   `json:"intercept" jsonschema:"minItems=2"`
}

// Artifacts is the loaded scaler, decoder and model triple.
type Artifacts struct {
	Scaler       ScalerArtifact
	LabelEncoder LabelEncoderArtifact
	Model        ModelArtifact
	Fingerprint  string
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

// LoadArtifacts reads and validates the three artifact files from dir.
func LoadArtifacts(dir string) (*Artifacts, error) {
	var a Artifacts
	h := sha256.New()

	files := []struct {
		name   string
		target any
	}{
		{ScalerFile, &a.Scaler},
		{LabelEncoderFile, &a.LabelEncoder},
		{ModelFile, &a.Model},
	}
	for _, f := range files {
		raw, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrModelUnavailable, f.name, err)
		}
		if err := decodeArtifact(f.name, raw, f.target); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		h.Write(raw)
	}

	if err := a.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	a.Fingerprint = hex.EncodeToString(h.Sum(nil))[:16]
	return &a, nil
}

func decodeArtifact(name string, raw []byte, target any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	schema, err := artifactSchema(name, target)
	if err != nil {
		return fmt.Errorf("compiling schema for %s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s does not match schema: %w", name, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// artifactSchema reflects a JSON Schema from the artifact type and compiles it.
func artifactSchema(name string, v any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	reflector := invopop.Reflector{
		Anonymous:                 true,
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	defBytes, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + name
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

// check enforces the cross-file shape the schemas cannot express.
func (a *Artifacts) check() error {
	classes := len(a.LabelEncoder.Classes)
	if len(a.Model.Coef) != classes {
		return fmt.Errorf("model has %d coefficient rows, label encoder has %d classes", len(a.Model.Coef), classes)
	}
	if len(a.Model.Intercept) != classes {
		return fmt.Errorf("model has %d intercepts, label encoder has %d classes", len(a.Model.Intercept), classes)
	}
	for i, row := range a.Model.Coef {
		if len(row) != model.FeatureVectorSize {
			return fmt.Errorf("coefficient row %d has %d weights, want %d", i, len(row), model.FeatureVectorSize)
		}
	}
	return nil
}
