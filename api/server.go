// Package api serves the pawswap keepers over HTTP and a websocket stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/paw-chain/pawswap/app"
)

// Server represents the main API server
type Server struct {
	logger      log.Logger
	config      *Config
	app         *app.App
	router      *gin.Engine
	handler     http.Handler
	wsHub       *WebSocketHub
	rateLimiter *RateLimiter
}

// Config holds server configuration
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxRequestBytes int64         `mapstructure:"max_request_bytes"`
	// WSBufferSize bounds the events queued per websocket client.
	WSBufferSize int `mapstructure:"ws_buffer_size"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      "0.0.0.0:5000",
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:8080"},
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  30 * time.Second,
		MaxRequestBytes: MaxRequestSize,
		WSBufferSize:    256,
		RateLimit:       *DefaultRateLimitConfig(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("max request bytes must be positive")
	}
	if c.WSBufferSize <= 0 {
		return fmt.Errorf("websocket buffer size must be positive")
	}
	return c.RateLimit.Validate()
}

// NewServer creates a new API server over the given app.
func NewServer(logger log.Logger, a *app.App, config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("module", "api")

	s := &Server{
		logger: logger,
		config: config,
		app:    a,
		wsHub:  NewWebSocketHub(logger, config.WSBufferSize),
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(&config.RateLimit)
	}
	a.Events.Add(s.wsHub)

	s.setupRouter()
	return s, nil
}

// setupRouter configures the Gin router with all routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()

	// Global middleware - ORDER MATTERS!
	// 1. Recovery (must be first to catch panics)
	s.router.Use(RecoveryMiddleware(s.logger))

	// 2. Security headers (set early)
	s.router.Use(SecurityHeadersMiddleware())

	// 3. Request size limiting
	s.router.Use(RequestSizeLimitMiddleware(s.config.MaxRequestBytes))

	// 4. Request ID and tracing
	s.router.Use(RequestIDMiddleware())
	s.router.Use(TracingMiddleware())

	// 5. Logging
	s.router.Use(LoggerMiddleware(s.logger))

	// 6. Rate limiting (before expensive operations)
	if s.rateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.rateLimiter))
	}

	// 7. Timeout
	s.router.Use(TimeoutMiddleware(s.config.RequestTimeout))

	s.app.Health.RegisterRoutes(s.router)
	if s.rateLimiter != nil {
		s.router.GET("/rate-limit/stats", s.handleRateLimitStats)
	}

	s.registerRoutes()

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(s.router)
}

// Handler returns the HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the websocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)
	if s.rateLimiter != nil {
		go s.rateLimiter.Run(hubCtx)
	}

	srv := &http.Server{
		Addr:           s.config.ListenAddr,
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting api server", "addr", s.config.ListenAddr)
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

// handleRateLimitStats returns rate limiter statistics
func (s *Server) handleRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.rateLimiter.GetStats())
}
