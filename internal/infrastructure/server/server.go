package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/pagehook/internal/api/http"
	"github.com/GriffinCanCode/pagehook/internal/api/middleware"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/config"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/pagehook/internal/inspect"
	"github.com/GriffinCanCode/pagehook/internal/sandbox"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	config    *config.Config
	router    *gin.Engine
	http      *http.Server
	inspector *inspect.Service
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
	logger    *zap.Logger
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Initializing page server",
		zap.String("addr", cfg.Addr()),
		zap.String("runtime", cfg.Page.Runtime),
		zap.Int("sandbox_pool", cfg.Sandbox.PoolSize),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("pagehook", logger.Named("trace"))

	sandboxCfg := sandbox.DefaultConfig()
	sandboxCfg.Timeout = cfg.Sandbox.Timeout.Std()
	inspector, err := inspect.New(inspect.Config{
		MaxActivations: cfg.Sandbox.MaxActivations,
		PoolSize:       cfg.Sandbox.PoolSize,
		Sandbox:        sandboxCfg,
	}, inspect.WithRecorder(metrics), inspect.WithLogger(logger.Named("inspect")))
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to create inspector: %w", err)
	}
	metrics.SetSandboxAvailable(inspector.PoolStats().Available)

	handlers, err := api.NewHandlers(api.PageSettings{
		Title:   cfg.Page.Title,
		Runtime: cfg.Page.Runtime,
	}, inspector, metrics, tracer, logger.Named("http"))
	if err != nil {
		inspector.Close()
		tracer.Close()
		return nil, fmt.Errorf("failed to create handlers: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		limit := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(limit))
		} else {
			router.Use(middleware.RateLimit(limit))
		}
	}

	// Page
	router.GET("/", handlers.Index)
	router.GET(api.StaticPath+"/*filepath", handlers.Static)
	if cfg.Page.Runtime == config.RuntimeWasm {
		router.Static(api.WasmPath, cfg.Page.WasmDir)
	}

	// Operations
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.POST("/api/inspect", handlers.Inspect)

	s := &Server{
		config:    cfg,
		router:    router,
		inspector: inspector,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root handler, gzip-wrapped when compression is on
func (s *Server) Handler() http.Handler {
	if s.config.Server.Compress {
		return gzhttp.GzipHandler(s.router)
	}
	return s.router
}

// Run serves HTTP until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the sandbox pool and
// flushes spans and logs
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}

	if cerr := s.inspector.Close(); cerr != nil {
		s.logger.Error("Failed to close sandbox pool", zap.Error(cerr))
		err = errors.Join(err, cerr)
	}
	s.tracer.Close()
	_ = s.logger.Sync()

	return err
}
