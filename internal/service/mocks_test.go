package service_test

import (
	"context"
	"sync"

	"elevatr.app/predictor/internal/cache"
	"elevatr.app/predictor/internal/classifier"
	"elevatr.app/predictor/internal/model"
)

type mockClassifier struct {
	predictFn func(ctx context.Context, v model.FeatureVector) (classifier.Output, error)
	readyFn   func(ctx context.Context) error
	version   string
	// unversioned makes Version report "", as an unpinned remote model does.
	unversioned bool

	mu           sync.Mutex
	predictCalls int
}

func (m *mockClassifier) Predict(ctx context.Context, v model.FeatureVector) (classifier.Output, error) {
	m.mu.Lock()
	m.predictCalls++
	m.mu.Unlock()
	if m.predictFn != nil {
		return m.predictFn(ctx, v)
	}
	return classifier.Output{Grade: model.GradeB}, nil
}

func (m *mockClassifier) Ready(ctx context.Context) error {
	if m.readyFn != nil {
		return m.readyFn(ctx)
	}
	return nil
}

func (m *mockClassifier) Version() string {
	if m.unversioned {
		return ""
	}
	if m.version == "" {
		return "test"
	}
	return m.version
}

func (m *mockClassifier) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictCalls
}

type mockCache struct {
	getFn func(ctx context.Context, key string) (*model.PredictionResult, error)
	setFn func(ctx context.Context, key string, r *model.PredictionResult) error

	mu      sync.Mutex
	entries map[string]*model.PredictionResult
}

func (m *mockCache) Get(ctx context.Context, key string) (*model.PredictionResult, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.entries[key]; ok {
		return r, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, r *model.PredictionResult) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]*model.PredictionResult)
	}
	m.entries[key] = r
	return nil
}

func (m *mockCache) Close() error { return nil }
