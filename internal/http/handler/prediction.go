package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"elevatr.app/predictor/common/logger"
	"elevatr.app/predictor/internal/http/dto"
	"elevatr.app/predictor/internal/http/middleware"
	"elevatr.app/predictor/internal/model"
	"elevatr.app/predictor/internal/service"
	"elevatr.app/predictor/internal/validate"
)

type PredictionHandlerConfig struct {
	Version     string
	Environment string
}

type PredictionHandler struct {
	svc    service.PredictionService
	cfg    PredictionHandlerConfig
	schema *jsonschema.Schema
}

func NewPredictionHandler(svc service.PredictionService, cfg PredictionHandlerConfig) *PredictionHandler {
	return &PredictionHandler{
		svc:    svc,
		cfg:    cfg,
		schema: StudentSchema(),
	}
}

// StudentSchema reflects the JSON Schema of a prediction request body.
func StudentSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	s := r.Reflect(&model.StudentRecord{})
	s.Title = "StudentRecord"
	return s
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := c.GetRawData()
	if err != nil {
		rejectBody(c, err, validate.ErrNoData.Message)
		return
	}

	record, err := validate.Decode(body)
	if err != nil {
		slog.WarnContext(ctx, "validation failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Predict(ctx, record)
	if err != nil {
		var perr *service.PredictionError
		if !errors.As(err, &perr) {
			err = &service.PredictionError{Cause: err}
		}
		slog.ErrorContext(ctx, "prediction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PredictionHandler) Batch(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := c.GetRawData()
	if err != nil {
		rejectBody(c, err, "Expected array of student data")
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected array of student data"})
		return
	}

	batchID := service.BatchID(ctx)
	ctx = logger.WithLogFields(ctx, logger.LogFields{BatchID: &batchID})
	c.Header(middleware.BatchIDHeader, batchID)

	results, err := h.svc.Batch(ctx, items)
	if err != nil {
		if errors.Is(err, service.ErrBatchTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "batch prediction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch prediction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NewBatchResponse(results))
}

func (h *PredictionHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	resp := dto.HealthResponse{
		Status:       "healthy",
		ModelLoaded:  true,
		ModelVersion: h.svc.ModelVersion(),
		Environment:  h.cfg.Environment,
	}
	status := http.StatusOK

	if err := h.svc.Ready(ctx); err != nil {
		slog.WarnContext(ctx, "model not ready", "error", err)
		resp.Status = "unhealthy"
		resp.ModelLoaded = false
		resp.ModelVersion = ""
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

func (h *PredictionHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, dto.IndexResponse{
		Name:        "Elevatr API",
		Version:     h.cfg.Version,
		Description: "AI-powered student performance prediction API",
		Endpoints: map[string]string{
			"health":  "/api/health",
			"predict": "/api/predict",
			"batch":   "/api/batch",
			"schema":  "/api/schema",
		},
	})
}

func (h *PredictionHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}

// rejectBody answers a failed body read: 413 past the size limit, otherwise
// 400 with msg.
func rejectBody(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		slog.WarnContext(c.Request.Context(), "request body too large", "limit", tooLarge.Limit)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
