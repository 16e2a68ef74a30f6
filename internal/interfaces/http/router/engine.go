package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/infrastructure/logger"
	"github.com/opsboard/backend/internal/interfaces/http/handler"
	"github.com/opsboard/backend/internal/interfaces/http/middleware"
)

// EngineConfig gathers everything the engine's middleware chain needs
type EngineConfig struct {
	ServiceName    string
	Production     bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        bool
	TracerProvider trace.TracerProvider
	Meter          metric.Meter
	Auth           middleware.AuthConfig
	Logger         *zap.Logger
}

// NewEngine builds the gin engine: global middleware, the unauthenticated
// health check and every registrar under /api/v1 behind authentication
func NewEngine(cfg EngineConfig, health *handler.HealthHandler, registrars ...RouteRegistrar) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.Tracing,
			TracerProvider: cfg.TracerProvider,
		}),
		logger.GinMiddleware(cfg.Logger),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{Meter: cfg.Meter, Logger: cfg.Logger}),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	if health != nil {
		engine.GET("/health", health.Health)
	}

	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = cfg.Logger
	}
	if cfg.Auth.SkipPaths == nil {
		cfg.Auth.SkipPaths = middleware.DefaultSkipPaths
	}
	// the dev header never applies in production
	cfg.Auth.AllowDevHeader = cfg.Auth.AllowDevHeader && !cfg.Production

	r := NewRouter(engine, WithGroupMiddleware(
		middleware.Authenticate(cfg.Auth),
		middleware.SpanAnnotator(),
	))
	for _, reg := range registrars {
		r.Register(reg)
	}
	api := r.Setup()
	if health != nil {
		api.GET("/health", health.Health)
	}
	return engine, nil
}
