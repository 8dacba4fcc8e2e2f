package classifier

import (
	"context"
	"fmt"
	"math"

	"elevatr.app/predictor/internal/model"
)

// Local evaluates the model in-process from artifacts loaded at startup.
type Local struct {
	artifacts *Artifacts
	version   string
}

// NewLocal loads artifacts from dir. Any failure is reported as
// ErrModelUnavailable so callers can refuse to start.
func NewLocal(dir string) (*Local, error) {
	a, err := LoadArtifacts(dir)
	if err != nil {
		return nil, err
	}
	return NewLocalFromArtifacts(a), nil
}

func NewLocalFromArtifacts(a *Artifacts) *Local {
	version := a.Model.Version
	if version == "" {
		version = a.Fingerprint
	}
	return &Local{artifacts: a, version: version}
}

func (l *Local) Version() string {
	return l.version
}

func (l *Local) Ready(_ context.Context) error {
	if l == nil || l.artifacts == nil {
		return ErrModelUnavailable
	}
	return nil
}

func (l *Local) Predict(ctx context.Context, features model.FeatureVector) (Output, error) {
	if err := l.Ready(ctx); err != nil {
		return Output{}, err
	}

	scaled := l.Transform(features)
	scores := l.decision(scaled)
	idx := argmax(scores)

	grade, err := l.InverseTransform(idx)
	if err != nil {
		return Output{}, err
	}

	out := Output{Grade: grade}
	if l.artifacts.Model.Kind == ModelKindLogistic {
		probs := softmax(scores)
		out.Probabilities = make(map[model.Grade]float64, len(probs))
		for i, p := range probs {
			out.Probabilities[model.Grade(l.artifacts.LabelEncoder.Classes[i])] = p
		}
	}
	return out, nil
}

// Transform standardizes features with the fitted scaler. A zero scale is
// treated as 1, matching how constant features are fitted.
func (l *Local) Transform(features model.FeatureVector) model.FeatureVector {
	var out model.FeatureVector
	s := l.artifacts.Scaler
	for i, v := range features {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}

// InverseTransform maps an encoded class index back to its grade label.
func (l *Local) InverseTransform(idx int) (model.Grade, error) {
	classes := l.artifacts.LabelEncoder.Classes
	if idx < 0 || idx >= len(classes) {
		return "", fmt.Errorf("%w: class index %d out of range", ErrInference, idx)
	}
	return model.Grade(classes[idx]), nil
}

func (l *Local) decision(x model.FeatureVector) []float64 {
	m := l.artifacts.Model
	scores := make([]float64, len(m.Coef))
	for c, row := range m.Coef {
		sum := m.Intercept[c]
		for i, w := range row {
			sum += w * x[i]
		}
		scores[c] = sum
	}
	return scores
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func softmax(v []float64) []float64 {
	hi := v[argmax(v)]
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = math.Exp(x - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
