package service

import (
	"errors"
	"fmt"
)

var (
	ErrPredictionFailed = errors.New("prediction failed")
	ErrBatchTooLarge    = errors.New("batch too large")
)

// PredictionError wraps a classifier failure. Its message is client-facing.
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string {
	return "Prediction failed: " + e.Cause.Error()
}

func (e *PredictionError) Unwrap() error { return e.Cause }

func (e *PredictionError) Is(target error) bool { return target == ErrPredictionFailed }

// BatchSizeError rejects a batch wholesale.
type BatchSizeError struct {
	Limit int
	Size  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("Batch size limited to %d students", e.Limit)
}

func (e *BatchSizeError) Is(target error) bool { return target == ErrBatchTooLarge }
