package handler_test

import (
	"context"
	"encoding/json"

	"elevatr.app/predictor/internal/model"
	"elevatr.app/predictor/internal/service"
)

type mockPredictionService struct {
	predictFn func(ctx context.Context, record model.StudentRecord) (*model.PredictionResult, error)
	batchFn   func(ctx context.Context, items []json.RawMessage) ([]service.BatchItem, error)
	readyFn   func(ctx context.Context) error
	version   string
}

func (m *mockPredictionService) Predict(ctx context.Context, record model.StudentRecord) (*model.PredictionResult, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, record)
	}
	return &model.PredictionResult{PredictedGrade: model.GradeB, Confidence: 0.85}, nil
}

func (m *mockPredictionService) Batch(ctx context.Context, items []json.RawMessage) ([]service.BatchItem, error) {
	if m.batchFn != nil {
		return m.batchFn(ctx, items)
	}
	return nil, nil
}

func (m *mockPredictionService) Ready(ctx context.Context) error {
	if m.readyFn != nil {
		return m.readyFn(ctx)
	}
	return nil
}

func (m *mockPredictionService) ModelVersion() string {
	return m.version
}
