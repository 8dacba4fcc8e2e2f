package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"elevatr.app/predictor/common/id"
	"elevatr.app/predictor/common/logger"
	"elevatr.app/predictor/common/otel"
	"elevatr.app/predictor/core/config"
	"elevatr.app/predictor/internal/cache"
	"elevatr.app/predictor/internal/classifier"
	"elevatr.app/predictor/internal/http/middleware"
	httprouter "elevatr.app/predictor/internal/http/router"
	"elevatr.app/predictor/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "elevatr predictor starting", "env", cfg.Env, "version", cfg.Version)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	clf, err := newClassifier(ctx, cfg.Model)
	if err != nil {
		slog.ErrorContext(ctx, "failed to start: could not load model artifacts", "error", err, "backend", cfg.Model.Backend)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "model loaded", "backend", cfg.Model.Backend, "model_version", clf.Version())

	predictionCache := cache.NewNop()
	if cfg.Cache.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		predictionCache = cache.NewRedis(redisClient, cfg.Cache.TTL, slog.Default())
		slog.InfoContext(ctx, "redis prediction cache enabled", "ttl", cfg.Cache.TTL)
	}
	defer predictionCache.Close()

	svc := service.NewPredictionService(clf, predictionCache, service.BatchOptions{
		MaxSize:     cfg.Batch.MaxSize,
		Concurrency: cfg.Batch.Concurrency,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, svc)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func newClassifier(ctx context.Context, cfg config.ModelConfig) (classifier.Classifier, error) {
	switch cfg.Backend {
	case config.ModelBackendRemote:
		remote := classifier.NewRemote(classifier.RemoteConfig{
			BaseURL: cfg.URL,
			Version: cfg.Version,
			Timeout: cfg.Timeout,
		})
		if err := remote.Ready(ctx); err != nil {
			return nil, err
		}
		return remote, nil
	default:
		return classifier.NewLocal(cfg.Dir)
	}
}

func setupRouter(cfg config.Config, svc service.PredictionService) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → RequestID tags context → Logger logs it
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, svc, httprouter.RouterConfig{
		Version:        cfg.Version,
		Environment:    cfg.Env,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	return router
}

const banner = `
███████╗██╗     ███████╗██╗   ██╗ █████╗ ████████╗██████╗ 
██╔════╝██║     ██╔════╝██║   ██║██╔══██╗╚══██╔══╝██╔══██╗
█████╗  ██║     █████╗  ██║   ██║███████║   ██║   ██████╔╝
██╔══╝  ██║     ██╔══╝  ╚██╗ ██╔╝██╔══██║   ██║   ██╔══██╗
███████╗███████╗███████╗ ╚████╔╝ ██║  ██║   ██║   ██║  ██║
╚══════╝╚══════╝╚══════╝  ╚═══╝  ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝
`
