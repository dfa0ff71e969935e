// Package httpapi serves placeholders over HTTP/JSON with echo.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/placeholders          {src | data_base64, width, height, quality}
//	GET    /v1/placeholders?src=...&width=&height=&quality=
//	POST   /v1/placeholders/batch    {sources: [...], width, height, quality}
//	GET    /v1/palette?src=...&count=
//	GET    /v1/cache/stats
//	DELETE /v1/cache[?key=...]
//	GET    /metrics, /metrics.json
//
// Invalid requests get 400, unreachable or undecodable sources 422, and
// rendering failures 500. Errors are rendered as {"message": "..."}.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ironsheep/placeholder-mcp/internal/metrics"
	"github.com/ironsheep/placeholder-mcp/internal/placeholder"
)

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 10 * time.Second

// Server is the HTTP front end of a placeholder.Service.
type Server struct {
	svc        *placeholder.Service
	metrics    *metrics.Registry
	logger     *zap.Logger
	allowFiles bool
	echo       *echo.Echo
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the registry behind the request counters and /metrics.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Server) {
		s.metrics = reg
	}
}

// WithLocalFiles allows plain paths and file:// URLs as sources.
func WithLocalFiles(allow bool) Option {
	return func(s *Server) {
		s.allowFiles = allow
	}
}

// New builds the echo instance and registers all routes.
func New(svc *placeholder.Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(RequestLogger(s.logger, s.metrics))
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)

	v1 := e.Group("/v1")
	v1.POST("/placeholders", s.handleGenerate)
	v1.GET("/placeholders", s.handleGenerateQuery)
	v1.POST("/placeholders/batch", s.handleBatch)
	v1.GET("/palette", s.handlePalette)
	v1.GET("/cache/stats", s.handleCacheStats)
	v1.DELETE("/cache", s.handleCacheDelete)

	e.GET("/metrics", s.metrics.EchoHandlerText)
	e.GET("/metrics.json", s.metrics.EchoHandlerJSON)

	s.echo = e
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.logger.Info("http api listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
