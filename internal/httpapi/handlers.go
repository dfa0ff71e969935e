package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/placeholder-mcp/internal/placeholder"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req placeholder.Request
	if err := c.Bind(&req); err != nil {
		return err
	}
	return s.generate(c, req)
}

func (s *Server) handleGenerateQuery(c echo.Context) error {
	var req placeholder.Request
	err := echo.QueryParamsBinder(c).
		String("src", &req.Src).
		Int("width", &req.Width).
		Int("height", &req.Height).
		Float64("quality", &req.Quality).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s.generate(c, req)
}

func (s *Server) generate(c echo.Context, req placeholder.Request) error {
	src, err := req.Source()
	if err != nil {
		return s.mapError(err)
	}
	if err := s.checkSource(src); err != nil {
		return err
	}

	res, err := s.svc.Placeholder(c.Request().Context(), src, req.Options())
	if err != nil {
		return s.mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

type batchResponse struct {
	Placeholders map[string]string          `json:"placeholders"`
	Failures     []placeholder.BatchFailure `json:"failures"`
	Count        int                        `json:"count"`
}

func (s *Server) handleBatch(c echo.Context) error {
	var req placeholder.BatchRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if len(req.Sources) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "sources must not be empty")
	}
	sources, opts, err := req.Resolve()
	if err != nil {
		return s.mapError(err)
	}
	if err := s.svc.CheckOptions(opts); err != nil {
		return s.mapError(err)
	}
	for _, src := range sources {
		if err := s.checkSource(src); err != nil {
			return err
		}
	}

	res := s.svc.Batch(c.Request().Context(), sources, opts)
	return c.JSON(http.StatusOK, &batchResponse{
		Placeholders: res.Placeholders,
		Failures:     res.Failures,
		Count:        len(res.Placeholders),
	})
}

func (s *Server) handlePalette(c echo.Context) error {
	var (
		loc   string
		count = 5
	)
	err := echo.QueryParamsBinder(c).
		MustString("src", &loc).
		Int("count", &count).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if count <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "count must be positive")
	}

	src := placeholder.FromLocation(loc)
	if err := s.checkSource(src); err != nil {
		return err
	}
	p, err := s.svc.Palette(c.Request().Context(), src, count)
	if err != nil {
		return s.mapError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Cache().Stats())
}

func (s *Server) handleCacheDelete(c echo.Context) error {
	cache := s.svc.Cache()
	if key := c.QueryParam("key"); key != "" {
		_, existed := cache.Lookup(key)
		cache.Evict(key)
		return c.JSON(http.StatusOK, map[string]interface{}{"key": key, "evicted": existed})
	}
	cache.Clear()
	return c.JSON(http.StatusOK, map[string]bool{"cleared": true})
}

// checkSource rejects local file sources unless they are allowed.
func (s *Server) checkSource(src placeholder.Source) error {
	if s.allowFiles || !src.IsLocation() {
		return nil
	}
	for _, scheme := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(src.Location, scheme) {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest,
		fmt.Sprintf("local file sources are not allowed: %s", src))
}

// mapError translates service errors into HTTP errors.
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, placeholder.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, placeholder.ErrSourceUnavailable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}
