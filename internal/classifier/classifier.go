// Package classifier wraps the trained grade model. The rest of the service
// only needs "feature vector in, grade and optional class probabilities out".
package classifier

import (
	"context"
	"errors"

	"elevatr.app/predictor/internal/model"
)

var (
	// ErrModelUnavailable means the artifacts could not be loaded or the
	// remote model server is unreachable.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInference means the model rejected or failed on an input.
	ErrInference = errors.New("inference failed")
)

// Output is a single model decision.
type Output struct {
	Grade model.Grade
	// Probabilities is nil when the model does not expose a distribution.
	Probabilities map[model.Grade]float64
}

// Classifier is read-only after construction and safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, features model.FeatureVector) (Output, error)
	Ready(ctx context.Context) error
	// Version identifies the loaded model; it changes whenever predictions may.
	// An empty version means predictions must not be cached.
	Version() string
}
