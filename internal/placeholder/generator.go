package placeholder

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultMaxSourceBytes bounds how much of a source is read.
	DefaultMaxSourceBytes = 20 << 20

	// DefaultMaxSourcePixels bounds the decoded size of a source.
	DefaultMaxSourcePixels = 50_000_000

	// DefaultFetchTimeout bounds a single HTTP fetch.
	DefaultFetchTimeout = 10 * time.Second
)

// GeneratorConfig configures a Generator. Zero values select defaults.
type GeneratorConfig struct {
	// HTTPClient fetches http(s) sources. Defaults to a client with
	// DefaultFetchTimeout.
	HTTPClient *http.Client

	// NewSurface allocates the rendering surface. Defaults to a bilinear Canvas.
	NewSurface SurfaceFactory

	// MaxSourceBytes rejects larger sources. Defaults to DefaultMaxSourceBytes.
	MaxSourceBytes int64

	// MaxSourcePixels rejects sources whose header declares more pixels.
	// Defaults to DefaultMaxSourcePixels.
	MaxSourcePixels int64

	// MaxDimension caps the placeholder width and height. Defaults to
	// DefaultMaxDimension.
	MaxDimension int

	// UserAgent is sent with HTTP fetches when non-empty.
	UserAgent string

	// Defaults fills unset per-call options. Defaults to DefaultOptions().
	Defaults Options
}

// Generator turns sources into placeholder data URIs. It holds no mutable
// state and is safe for concurrent use; it does not deduplicate work.
type Generator struct {
	client     *http.Client
	newSurface SurfaceFactory
	maxBytes   int64
	maxPixels  int64
	maxDim     int
	userAgent  string
	defaults   Options
}

// NewGenerator creates a Generator from cfg.
func NewGenerator(cfg GeneratorConfig) *Generator {
	g := &Generator{
		client:     cfg.HTTPClient,
		newSurface: cfg.NewSurface,
		maxBytes:   cfg.MaxSourceBytes,
		maxPixels:  cfg.MaxSourcePixels,
		maxDim:     cfg.MaxDimension,
		userAgent:  cfg.UserAgent,
		defaults:   cfg.Defaults.WithDefaults(DefaultOptions()),
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if g.newSurface == nil {
		g.newSurface = CanvasFactory(CanvasConfig{})
	}
	if g.maxBytes <= 0 {
		g.maxBytes = DefaultMaxSourceBytes
	}
	if g.maxPixels <= 0 {
		g.maxPixels = DefaultMaxSourcePixels
	}
	if g.maxDim <= 0 {
		g.maxDim = DefaultMaxDimension
	}
	return g
}

// Defaults returns the options applied to unset per-call fields.
func (g *Generator) Defaults() Options {
	return g.defaults
}

// CheckOptions applies the generator defaults to opts and rejects
// renditions larger than the configured maximum dimension.
func (g *Generator) CheckOptions(opts Options) (Options, error) {
	opts = opts.WithDefaults(g.defaults)
	if err := opts.Check(g.maxDim); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Generate produces a placeholder for src.
//
// The source is resolved and decoded, drawn into a fresh surface of exactly
// opts.Width x opts.Height and exported at opts.Quality. The result is a
// non-empty data URI.
//
// # Errors
//
//   - ErrInvalidRequest: opts exceeds the maximum dimension
//   - ErrSourceUnavailable: the source could not be fetched, read or decoded
//   - ErrRenderSurfaceUnavailable: no surface could be allocated or it failed
//     to export
func (g *Generator) Generate(ctx context.Context, src Source, opts Options) (string, error) {
	opts, err := g.CheckOptions(opts)
	if err != nil {
		return "", err
	}

	img, err := g.Load(ctx, src)
	if err != nil {
		return "", err
	}

	surface, err := g.newSurface()
	if err != nil {
		return "", surfaceError(err)
	}

	surface.Draw(img, opts.Width, opts.Height)

	uri, err := surface.Export(opts.Quality)
	if err != nil {
		return "", surfaceError(err)
	}
	return uri, nil
}
