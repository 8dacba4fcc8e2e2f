package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"elevatr.app/predictor/internal/model"
)

type RemoteConfig struct {
	BaseURL string
	// Version pins the model version served at BaseURL. Left empty, Version()
	// reports nothing and results are not cacheable.
	Version string
	Timeout time.Duration
}

// Remote calls a model server that owns its own scaler and decoder. It sends
// the raw feature vector and expects a decoded grade back.
type Remote struct {
	baseURL    string
	pinned     string
	httpClient *http.Client
}

type remoteHealth struct {
	ModelVersion string `json:"model_version"`
}

type remoteRequest struct {
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
}

type remoteResponse struct {
	Grade         string             `json:"grade"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

func NewRemote(cfg RemoteConfig) *Remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pinned:     cfg.Version,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Version returns the pinned version, or "" when none was configured.
func (r *Remote) Version() string {
	return r.pinned
}

func (r *Remote) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("%w: reading health: %v", ErrModelUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: model server health returned %d", ErrModelUnavailable, resp.StatusCode)
	}

	// A health body without a version is accepted as-is.
	var health remoteHealth
	if r.pinned == "" || json.Unmarshal(body, &health) != nil || health.ModelVersion == "" {
		return nil
	}
	if health.ModelVersion != r.pinned {
		return fmt.Errorf("%w: model server reports version %q, expected %q", ErrModelUnavailable, health.ModelVersion, r.pinned)
	}
	return nil
}

func (r *Remote) Predict(ctx context.Context, features model.FeatureVector) (Output, error) {
	body, err := json.Marshal(remoteRequest{
		Features:     features.Slice(),
		FeatureNames: model.FeatureNames[:],
	})
	if err != nil {
		return Output{}, fmt.Errorf("%w: encoding request: %v", ErrInference, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Output{}, fmt.Errorf("%w: building request: %v", ErrInference, err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Output{}, fmt.Errorf("%w: reading response: %v", ErrInference, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("%w: model server returned %d: %s", ErrInference, resp.StatusCode, truncate(string(respBody), 200))
	}

	var decoded remoteResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return Output{}, fmt.Errorf("%w: decoding response: %v", ErrInference, err)
	}
	if decoded.Grade == "" {
		return Output{}, fmt.Errorf("%w: model server returned no grade", ErrInference)
	}

	out := Output{Grade: model.Grade(decoded.Grade)}
	if decoded.Probabilities != nil {
		out.Probabilities = make(map[model.Grade]float64, len(decoded.Probabilities))
		for k, v := range decoded.Probabilities {
			out.Probabilities[model.Grade(k)] = v
		}
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
