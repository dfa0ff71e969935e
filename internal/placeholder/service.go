package placeholder

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Recorder receives counter increments. metrics.Registry satisfies it.
type Recorder interface {
	Inc(ctx context.Context, name string, labels map[string]string, n int64)
}

// Service combines a Generator with a SessionCache.
type Service struct {
	gen     *Generator
	cache   *SessionCache
	logger  *zap.Logger
	metrics Recorder
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.metrics = r
	}
}

// NewService creates a Service. A nil cache gets a fresh in-memory cache.
func NewService(gen *Generator, cache *SessionCache, opts ...ServiceOption) *Service {
	if cache == nil {
		cache = NewSessionCache(nil)
	}
	s := &Service{
		gen:    gen,
		cache:  cache,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the session cache owned by the service.
func (s *Service) Cache() *SessionCache {
	return s.cache
}

// Generator returns the underlying generator.
func (s *Service) Generator() *Generator {
	return s.gen
}

// Result describes a placeholder returned by Service.Placeholder.
type Result struct {
	Key         string  `json:"key"`
	Placeholder string  `json:"placeholder"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Quality     float64 `json:"quality"`
	Cached      bool    `json:"cached"`
}

// CheckOptions rejects renditions the generator would refuse. Callers use it
// to fail a whole batch up front.
func (s *Service) CheckOptions(opts Options) error {
	_, err := s.gen.CheckOptions(opts)
	return err
}

// Placeholder returns the cached placeholder for src, generating it on a miss.
func (s *Service) Placeholder(ctx context.Context, src Source, opts Options) (*Result, error) {
	opts, err := s.gen.CheckOptions(opts)
	if err != nil {
		s.count(ctx, "placeholder_failures_total", map[string]string{"reason": failureReason(err)})
		return nil, err
	}
	key := CacheKey(src, opts)

	uri, hit, err := s.cache.getOrGenerate(ctx, key, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, src, opts)
	})
	if err != nil {
		s.count(ctx, "placeholder_failures_total", map[string]string{"reason": failureReason(err)})
		return nil, err
	}

	if hit {
		s.count(ctx, "placeholder_cache_hits_total", nil)
	} else {
		s.count(ctx, "placeholder_cache_misses_total", nil)
		s.logger.Debug("placeholder generated",
			zap.String("key", key),
			zap.Int("width", opts.Width),
			zap.Int("height", opts.Height),
			zap.Int("bytes", len(uri)))
	}

	return &Result{
		Key:         key,
		Placeholder: uri,
		Width:       opts.Width,
		Height:      opts.Height,
		Quality:     opts.Quality,
		Cached:      hit,
	}, nil
}

// BatchFailure records a source omitted from a batch result.
type BatchFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult holds the placeholders of a batch keyed by source identifier,
// and the sources that failed.
type BatchResult struct {
	Placeholders map[string]string `json:"placeholders"`
	Failures     []BatchFailure    `json:"failures"`
}

// Batch generates placeholders for all sources concurrently.
//
// Each source is identified as by BatchIDs and goes through the session cache.
// A failure never affects the other sources: the failing identifier is left
// out of Placeholders, logged, and listed in Failures (sorted by ID).
func (s *Service) Batch(ctx context.Context, sources []Source, opts Options) *BatchResult {
	res := &BatchResult{
		Placeholders: make(map[string]string, len(sources)),
		Failures:     []BatchFailure{},
	}

	var (
		mu sync.Mutex
		eg errgroup.Group
	)
	ids := BatchIDs(sources)
	for i, src := range sources {
		id := ids[i]
		src := src
		eg.Go(func() error {
			r, err := s.Placeholder(ctx, src, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("batch placeholder failed", zap.String("id", id), zap.Error(err))
				res.Failures = append(res.Failures, BatchFailure{ID: id, Error: err.Error()})
				return nil
			}
			res.Placeholders[id] = r.Placeholder
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].ID < res.Failures[j].ID
	})
	s.count(ctx, "placeholder_batch_items_total", map[string]string{"outcome": "ok"}, int64(len(res.Placeholders)))
	s.count(ctx, "placeholder_batch_items_total", map[string]string{"outcome": "failed"}, int64(len(res.Failures)))
	return res
}

// Palette loads src and extracts up to count dominant colours.
func (s *Service) Palette(ctx context.Context, src Source, count int) (*Palette, error) {
	img, err := s.gen.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return ExtractPalette(img, count), nil
}

func (s *Service) count(ctx context.Context, name string, labels map[string]string, n ...int64) {
	if s.metrics == nil {
		return
	}
	var v int64 = 1
	if len(n) > 0 {
		v = n[0]
	}
	if v == 0 {
		return
	}
	if labels == nil {
		labels = map[string]string{}
	}
	s.metrics.Inc(ctx, name, labels, v)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrRenderSurfaceUnavailable):
		return "render_surface_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
