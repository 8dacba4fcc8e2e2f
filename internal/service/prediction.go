package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"elevatr.app/predictor/common/logger"
	"elevatr.app/predictor/internal/cache"
	"elevatr.app/predictor/internal/classifier"
	"elevatr.app/predictor/internal/features"
	"elevatr.app/predictor/internal/model"
	"elevatr.app/predictor/internal/scoring"
	"elevatr.app/predictor/internal/validate"
)

// DefaultConfidence is reported when the classifier exposes no class
// probabilities.
const DefaultConfidence = 0.85

const (
	DefaultBatchMaxSize     = 100
	DefaultBatchConcurrency = 8
)

type BatchOptions struct {
	MaxSize     int
	Concurrency int
}

// BatchItem is one slot of a batch response: either Result or Error is set.
type BatchItem struct {
	Result *model.PredictionResult
	Error  string
}

type PredictionService interface {
	Predict(ctx context.Context, record model.StudentRecord) (*model.PredictionResult, error)
	// Batch validates and predicts every item independently. Per-item failures
	// occupy their slot; only an oversized batch or a cancelled context fail
	// the call as a whole.
	Batch(ctx context.Context, items []json.RawMessage) ([]BatchItem, error)
	Ready(ctx context.Context) error
	ModelVersion() string
}

type predictionService struct {
	classifier classifier.Classifier
	cache      cache.PredictionCache
	batch      BatchOptions
}

func NewPredictionService(c classifier.Classifier, pc cache.PredictionCache, opts BatchOptions) PredictionService {
	if pc == nil {
		pc = cache.NewNop()
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultBatchMaxSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultBatchConcurrency
	}
	return &predictionService{
		classifier: c,
		cache:      pc,
		batch:      opts,
	}
}

func (s *predictionService) Ready(ctx context.Context) error {
	return s.classifier.Ready(ctx)
}

func (s *predictionService) ModelVersion() string {
	return s.classifier.Version()
}

func (s *predictionService) Predict(ctx context.Context, record model.StudentRecord) (*model.PredictionResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "predictor.service.prediction"})
	sc := logger.StartSpan(ctx, "prediction.predict")
	defer sc.End()
	ctx = sc.Context()

	vector := features.Encode(record)
	pc := s.cache
	version := s.classifier.Version()
	if version == "" {
		pc = cache.NewNop()
	}
	key := cache.Key(version, vector)

	cached, err := pc.Get(ctx, key)
	switch {
	case err == nil:
		sc.SetAttributes(attribute.Bool("cache.hit", true))
		slog.DebugContext(ctx, "prediction served from cache", "grade", cached.PredictedGrade)
		return cached, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		slog.WarnContext(ctx, "prediction cache lookup failed", "error", err)
	}

	out, err := s.classify(ctx, vector)
	if err != nil {
		sc.RecordError(err)
		return nil, &PredictionError{Cause: err}
	}

	confidence := Confidence(out)
	slog.DebugContext(ctx, "risk factors", "points", scoring.RiskBreakdown(record))
	result := &model.PredictionResult{
		PredictedGrade:  out.Grade,
		Confidence:      confidence,
		RiskLevel:       scoring.RiskLevelFor(out.Grade),
		RiskScore:       scoring.RiskScore(record),
		Recommendations: scoring.Recommend(record, out.Grade, confidence),
		FeatureImpacts:  scoring.Impacts(record),
	}

	sc.SetAttributes(
		attribute.String("prediction.grade", string(result.PredictedGrade)),
		attribute.Float64("prediction.confidence", result.Confidence),
		attribute.Int("prediction.risk_score", result.RiskScore),
	)
	slog.InfoContext(ctx, "prediction completed",
		"grade", result.PredictedGrade,
		"confidence", result.Confidence,
		"risk_score", result.RiskScore)

	if err := pc.Set(ctx, key, result); err != nil {
		slog.WarnContext(ctx, "prediction cache store failed", "error", err)
	}
	return result, nil
}

func (s *predictionService) classify(ctx context.Context, vector model.FeatureVector) (classifier.Output, error) {
	sc := logger.StartSpan(ctx, "classifier.predict")
	defer sc.End()

	out, err := s.classifier.Predict(sc.Context(), vector)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(sc.Context(), "classifier failed", "error", err)
		return classifier.Output{}, err
	}
	return out, nil
}

func (s *predictionService) Batch(ctx context.Context, items []json.RawMessage) ([]BatchItem, error) {
	if len(items) > s.batch.MaxSize {
		return nil, &BatchSizeError{Limit: s.batch.MaxSize, Size: len(items)}
	}

	batchID := BatchID(ctx)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		BatchID:   &batchID,
		Component: "predictor.service.batch",
	})
	sc := logger.StartSpan(ctx, "prediction.batch")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.size", len(items)),
	)

	results := make([]BatchItem, len(items))

	g := new(errgroup.Group)
	g.SetLimit(s.batch.Concurrency)
	for i, raw := range items {
		g.Go(func() error {
			itemCtx := logger.WithLogFields(ctx, logger.LogFields{BatchIndex: logger.Ptr(i)})
			results[i] = s.batchItem(itemCtx, i, raw)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	slog.InfoContext(ctx, "batch prediction completed", "students", len(results), "failed", failed)
	return results, nil
}

// BatchID returns the batch id already attached to ctx, or a fresh uuid.
func BatchID(ctx context.Context) string {
	if id := logger.GetLogFields(ctx).BatchID; id != nil && *id != "" {
		return *id
	}
	return uuid.NewString()
}

func (s *predictionService) batchItem(ctx context.Context, idx int, raw json.RawMessage) BatchItem {
	if err := ctx.Err(); err != nil {
		return BatchItem{Error: fmt.Sprintf("Student %d: %s", idx, err)}
	}

	record, err := validate.DecodeItem(raw)
	if err != nil {
		slog.DebugContext(ctx, "batch item rejected", "error", err)
		return BatchItem{Error: fmt.Sprintf("Student %d: %s", idx, err)}
	}

	result, err := s.Predict(ctx, record)
	if err != nil {
		return BatchItem{Error: fmt.Sprintf("Student %d: %s", idx, err)}
	}
	return BatchItem{Result: result}
}

// Confidence is the predicted class probability rounded to two decimals, or
// DefaultConfidence when the classifier reports no distribution.
func Confidence(out classifier.Output) float64 {
	if out.Probabilities == nil {
		return DefaultConfidence
	}
	p, ok := out.Probabilities[out.Grade]
	if !ok {
		return DefaultConfidence
	}
	return math.Round(p*100) / 100
}
