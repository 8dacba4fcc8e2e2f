package dto

import "elevatr.app/predictor/internal/service"

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version,omitempty"`
	Environment  string `json:"environment"`
}

type IndexResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// NewBatchResponse flattens batch slots into the wire shape: a
// PredictionResult or an ErrorResponse per position.
func NewBatchResponse(items []service.BatchItem) []any {
	out := make([]any, len(items))
	for i, item := range items {
		if item.Result != nil {
			out[i] = item.Result
			continue
		}
		out[i] = ErrorResponse{Error: item.Error}
	}
	return out
}
