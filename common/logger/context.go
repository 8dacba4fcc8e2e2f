package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields added to every log record emitted with
// a context that carries them.
type LogFields struct {
	RequestID  *int64  // X-Request-ID assigned by the HTTP middleware
	BatchID    *string // uuid of the enclosing batch request
	BatchIndex *int    // position of the record inside its batch
	Component  string  // e.g. "predictor.service.prediction"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.BatchID != nil {
		result.BatchID = new.BatchID
	}
	if new.BatchIndex != nil {
		result.BatchIndex = new.BatchIndex
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{BatchIndex: logger.Ptr(i)})
func Ptr[T any](v T) *T {
	return &v
}
