package placeholder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// DataURIPrefix starts every placeholder produced by Canvas.
const DataURIPrefix = "data:image/jpeg;base64,"

// Surface is an off-screen raster target. Draw scales a decoded image into a
// width x height raster; Export encodes the raster as a data URI.
type Surface interface {
	Draw(img image.Image, width, height int)
	Export(quality float64) (string, error)
}

// SurfaceFactory allocates a fresh Surface for one generation.
type SurfaceFactory func() (Surface, error)

// Resampler selects the scaling filter used by Canvas.
type Resampler string

const (
	// ResampleBilinear interpolates between neighbouring pixels.
	ResampleBilinear Resampler = "bilinear"

	// ResampleNearest picks the nearest source pixel (point sampling).
	ResampleNearest Resampler = "nearest"
)

// ParseResampler accepts "bilinear", "linear", "nearest" or "point".
// The empty string selects bilinear.
func ParseResampler(s string) (Resampler, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear", "linear":
		return ResampleBilinear, nil
	case "nearest", "point":
		return ResampleNearest, nil
	default:
		return "", fmt.Errorf("unknown resampler %q", s)
	}
}

// CanvasConfig configures the built-in Surface.
type CanvasConfig struct {
	// Resampler is the scaling filter. Empty means bilinear.
	Resampler Resampler

	// BlurSigma applies a Gaussian blur of this radius to the scaled raster
	// before encoding. Zero disables the pass.
	BlurSigma float64
}

// Canvas is the default Surface. It scales with disintegration/imaging
// (bilinear) or bild (nearest neighbour) and encodes JPEG with imaging.
// A Canvas is single-use and not safe for concurrent use.
type Canvas struct {
	cfg    CanvasConfig
	raster *image.NRGBA
}

// NewCanvas returns an empty canvas.
func NewCanvas(cfg CanvasConfig) *Canvas {
	return &Canvas{cfg: cfg}
}

// CanvasFactory returns a SurfaceFactory producing canvases with cfg.
func CanvasFactory(cfg CanvasConfig) SurfaceFactory {
	return func() (Surface, error) {
		return NewCanvas(cfg), nil
	}
}

// Draw scales the full frame of img to exactly width x height, ignoring the
// aspect ratio, and flattens it onto white since JPEG has no alpha channel.
func (c *Canvas) Draw(img image.Image, width, height int) {
	var scaled image.Image
	switch c.cfg.Resampler {
	case ResampleNearest:
		scaled = transform.Resize(img, width, height, transform.NearestNeighbor)
	default:
		scaled = imaging.Resize(img, width, height, imaging.Linear)
	}

	if c.cfg.BlurSigma > 0 {
		scaled = blur.Gaussian(scaled, c.cfg.BlurSigma)
	}

	c.raster = imaging.Overlay(imaging.New(width, height, color.White), scaled, image.Pt(0, 0), 1.0)
}

// Export encodes the drawn raster as a base64 JPEG data URI.
func (c *Canvas) Export(quality float64) (string, error) {
	if c.raster == nil {
		return "", errors.New("canvas has not been drawn")
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, c.raster, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
		return "", fmt.Errorf("failed to encode placeholder: %w", err)
	}

	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
