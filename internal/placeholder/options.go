package placeholder

import (
	"fmt"
	"math"
)

const (
	// DefaultWidth is the placeholder raster width in pixels.
	DefaultWidth = 20

	// DefaultHeight is the placeholder raster height in pixels.
	DefaultHeight = 20

	// DefaultQuality is the lossy compression factor in [0,1].
	DefaultQuality = 0.3

	// DefaultMaxDimension caps the requested placeholder width and height.
	DefaultMaxDimension = 256
)

// Options controls the size and compression of a generated placeholder.
//
// Zero values mean "use the default": a non-positive Width or Height falls
// back to the default dimension and a non-positive Quality falls back to the
// default quality. Quality above 1 is clamped to 1.
type Options struct {
	Width   int     `json:"width,omitempty" yaml:"width"`
	Height  int     `json:"height,omitempty" yaml:"height"`
	Quality float64 `json:"quality,omitempty" yaml:"quality"`
}

// DefaultOptions returns the 20x20, quality 0.3 configuration.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, Quality: DefaultQuality}
}

// WithDefaults fills unset fields of o from d and clamps Quality.
// If d itself has unset fields, the package defaults are used.
func (o Options) WithDefaults(d Options) Options {
	if d.Width <= 0 {
		d.Width = DefaultWidth
	}
	if d.Height <= 0 {
		d.Height = DefaultHeight
	}
	if d.Quality <= 0 {
		d.Quality = DefaultQuality
	}

	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Quality <= 0 {
		o.Quality = d.Quality
	}
	if o.Quality > 1 {
		o.Quality = 1
	}
	return o
}

// Check reports whether o fits within maxDim pixels on each side. It
// expects o to have defaults applied. Violations match ErrInvalidRequest.
func (o Options) Check(maxDim int) error {
	if o.Width > maxDim || o.Height > maxDim {
		return fmt.Errorf("%w: placeholder size %dx%d exceeds %dx%d",
			ErrInvalidRequest, o.Width, o.Height, maxDim, maxDim)
	}
	return nil
}

// jpegQuality maps a [0,1] quality factor to the 1-100 JPEG scale.
func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// variant returns the cache-key suffix for a rendition, or "" for the
// package default rendition.
func (o Options) variant() string {
	if o == DefaultOptions() {
		return ""
	}
	return fmt.Sprintf("#%dx%dq%.2f", o.Width, o.Height, o.Quality)
}
