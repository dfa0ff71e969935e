package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ironsheep/placeholder-mcp/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger returns middleware that logs requests with zap and updates
// the HTTP request counters in reg. reg may be nil.
func RequestLogger(logger *zap.Logger, reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, rid)

			// Route template, not the raw path, to bound label cardinality.
			path := c.Path()
			if path == "" {
				path = req.URL.Path
			}

			log := logger.With(
				zap.String("request_id", rid),
				zap.String("method", req.Method),
				zap.String("path", path),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			)

			err := next(c)
			if err != nil {
				// Render now so the logged status is the one sent.
				c.Error(err)
			}

			status := c.Response().Status
			duration := time.Since(start)
			labels := map[string]string{
				"method": req.Method,
				"path":   path,
				"status": statusClass(status),
			}

			if reg != nil {
				reg.Inc(req.Context(), "http_requests_total", labels, 1)
			}

			if status >= 500 {
				log.Error("http request failed",
					zap.Error(err),
					zap.Int("status", status),
					zap.Duration("duration", duration))
				if reg != nil {
					reg.Inc(req.Context(), "http_requests_errors_total", labels, 1)
				}
			} else {
				log.Info("http request served",
					zap.Int("status", status),
					zap.Duration("duration", duration))
			}

			return nil
		}
	}
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}
