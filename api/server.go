// Package api serves a read-only REST view of the marketplace state.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/mechx-labs/mechx/app"
	"github.com/mechx-labs/mechx/app/health"
)

// Server represents the main API server
type Server struct {
	router  *gin.Engine
	handler http.Handler
	app     *app.MechApp
	health  *health.Checker
	config  *Config
	logger  log.Logger
}

// Config holds server configuration
type Config struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors-origins"`
	RateLimitRPS    int           `mapstructure:"rate-limit-rps"`
	RateLimitBurst  int           `mapstructure:"rate-limit-burst"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	RequestTimeout  time.Duration `mapstructure:"request-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            "1317",
		CORSOrigins:     []string{"http://localhost:3000"},
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the listener and limiter settings.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return errors.New("rate limit burst is required when rate limiting is enabled")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewServer creates a new API server instance. A nil checker is replaced by one
// with the default health configuration.
func NewServer(mechApp *app.MechApp, checker *health.Checker, config *Config) (*Server, error) {
	if mechApp == nil {
		return nil, errors.New("app is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}

	logger := mechApp.Logger().With("module", "api")
	if checker == nil {
		var err error
		checker, err = health.NewChecker(logger, health.DefaultConfig(), mechApp)
		if err != nil {
			return nil, fmt.Errorf("failed to create health checker: %w", err)
		}
	}

	server := &Server{
		app:    mechApp,
		health: checker,
		config: config,
		logger: logger,
	}
	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with all routes and middleware
func (s *Server) setupRouter() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Recovery must run first to catch panics in every later handler.
	s.router.Use(gin.Recovery())
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestSizeLimitMiddleware(MaxRequestSize))
	s.router.Use(RequestIDMiddleware())
	s.router.Use(TracingMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(MetricsMiddleware())
	if s.config.RateLimitRPS > 0 {
		s.router.Use(RateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}
	s.router.Use(TimeoutMiddleware(s.config.RequestTimeout))

	s.health.RegisterRoutes(s.router)
	s.registerRoutes()

	s.handler = cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	}).Handler(s.router)
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")

	marketplace := v1.Group("/marketplace")
	{
		marketplace.GET("/params", s.handleGetParams)
		marketplace.GET("/stats", s.handleGetStats)
		marketplace.GET("/requests/:id", s.handleGetRequest)
		marketplace.GET("/mechs", s.handleListMechs)
		marketplace.GET("/mechs/:address", s.handleGetMech)
		marketplace.GET("/mechs/:address/undelivered", s.handleGetUndelivered)
		marketplace.GET("/requesters/:address", s.handleGetRequester)
	}

	karma := v1.Group("/karma")
	{
		karma.GET("/mechs/:address", s.handleGetMechKarma)
		karma.GET("/requesters/:requester/mechs/:mech", s.handleGetRequesterMechKarma)
	}

	trackers := v1.Group("/trackers")
	{
		trackers.GET("", s.handleListTrackers)
		trackers.GET("/:variant/mechs/:address", s.handleGetTrackerMechBalance)
		trackers.GET("/:variant/requesters/:address", s.handleGetTrackerRequesterBalance)
	}
}

// Handler returns the HTTP handler including CORS handling.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting api server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
