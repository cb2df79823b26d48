package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weatheria/weather-backend/internal/config"
	"github.com/weatheria/weather-backend/internal/server/handlers"
	"github.com/weatheria/weather-backend/internal/server/middlewares"
	"github.com/weatheria/weather-backend/internal/service"
	"github.com/weatheria/weather-backend/internal/weather"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	server  *http.Server
	weather *weather.Service
	metrics *middlewares.MetricsMiddleware
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

// NewServer wires the lookup service around provider and builds the gin
// engine. It does not start listening.
func NewServer(cfg *config.Config, provider service.WeatherService, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	metrics := middlewares.NewMetricsMiddleware(logger, tele)

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, cfg.Server.Mode == gin.DebugMode))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(metrics.Handler())

	s := &Server{
		cfg:    cfg,
		engine: engine,
		server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		weather: weather.NewService(provider, logger.Named("weather"), tele),
		metrics: metrics,
		logger:  logger,
		tele:    tele,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	metricsHandler := handlers.NewMetricsHandler(s.logger, s.metrics)
	s.weather.SetMetricsRecorder(metricsHandler)

	health := handlers.NewHealthHandler(s.logger)
	info := handlers.NewInfoHandler(s.cfg.Telemetry.ServiceName, s.cfg.Version, s.weather.ProviderName())

	s.engine.GET("/", info.Info)

	api := s.engine.Group("/api")
	api.Use(middlewares.CORSMiddleware(s.cfg.CORS))
	{
		// Business endpoints
		api.GET("/weather", handlers.NewWeatherHandler(s.weather, s.logger).GetWeather)

		// Health endpoints (Kubernetes friendly)
		api.GET("/health", health.Health)
		api.GET("/health/live", health.Liveness)
		api.GET("/health/ready", health.Readiness)

		// Preflight requests without an Origin header never reach the CORS handler.
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: "endpoint not found"})
	})
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and blocks until Shutdown is called
// or the listener fails. A clean shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting server",
		zap.String("addr", ln.Addr().String()),
		zap.String("provider", s.weather.ProviderName()))

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.server.Shutdown(ctx)
}
