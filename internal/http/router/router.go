package router

import (
	"github.com/gin-gonic/gin"

	"elevatr.app/predictor/internal/http/handler"
	"elevatr.app/predictor/internal/http/middleware"
	"elevatr.app/predictor/internal/service"
)

type RouterConfig struct {
	Version        string
	Environment    string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func SetupRoutes(router *gin.Engine, svc service.PredictionService, cfg RouterConfig) {
	h := handler.NewPredictionHandler(svc, handler.PredictionHandlerConfig{
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})

	// engine-level so preflight requests to unmatched OPTIONS routes are answered
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/", h.Index)
	PredictionRouter(router.Group("/api", middleware.BodyLimit(cfg.MaxBodyBytes)), h)
}

func PredictionRouter(rg *gin.RouterGroup, h *handler.PredictionHandler) {
	rg.GET("/health", h.Health)
	rg.GET("/schema", h.Schema)
	rg.POST("/predict", h.Predict)
	rg.POST("/batch", h.Batch)
}
