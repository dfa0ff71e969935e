package placeholder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source is an image to derive a placeholder from: either a location string
// or an in-memory blob. The generator never takes ownership of Data.
type Source struct {
	// Location is an http(s) URL, a data URI, a file:// URL or a file path.
	Location string

	// Data holds raw encoded image bytes when Location is empty.
	Data []byte

	// Name optionally labels a blob source in batch results and logs.
	Name string
}

// FromLocation returns a Source for a URL, data URI or file path.
func FromLocation(location string) Source {
	return Source{Location: location}
}

// FromBlob returns a Source for raw encoded image bytes.
func FromBlob(data []byte) Source {
	return Source{Data: data}
}

// IsLocation reports whether the source is identified by a location string.
func (s Source) IsLocation() bool {
	return s.Location != ""
}

// String returns a short description suitable for logs and errors.
// Data URIs are truncated.
func (s Source) String() string {
	switch {
	case s.IsLocation():
		if strings.HasPrefix(s.Location, "data:") && len(s.Location) > 48 {
			return s.Location[:48] + "..."
		}
		return s.Location
	case s.Name != "":
		return s.Name
	default:
		return fmt.Sprintf("blob(%d bytes)", len(s.Data))
	}
}

// SourceID returns the batch identifier of a source: its location, else its
// name, else a synthetic "blob-<index>".
func SourceID(s Source, index int) string {
	if s.IsLocation() {
		return s.Location
	}
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("blob-%d", index)
}

// BatchIDs returns the identifier of each source in a batch. Identifiers come
// from SourceID; a blob whose name was already taken by an earlier source gets
// "#<index>" appended so every blob has its own entry. Repeated locations keep
// their shared identifier since they yield the same placeholder.
func BatchIDs(sources []Source) []string {
	ids := make([]string, len(sources))
	taken := make(map[string]bool, len(sources))
	for i, src := range sources {
		id := SourceID(src, i)
		if !src.IsLocation() {
			for taken[id] {
				id = fmt.Sprintf("%s#%d", id, i)
			}
		}
		taken[id] = true
		ids[i] = id
	}
	return ids
}

// CacheKey derives the session cache key for a source rendered with opts.
//
// Locations are keyed by the location string and blobs by the SHA-256 of their
// bytes, so identical uploads share an entry. Renditions other than the
// default 20x20 @ 0.3 get a "#<w>x<h>q<quality>" suffix.
func CacheKey(s Source, opts Options) string {
	var key string
	if s.IsLocation() {
		key = s.Location
	} else {
		sum := sha256.Sum256(s.Data)
		key = "sha256:" + hex.EncodeToString(sum[:])
	}
	return key + opts.WithDefaults(DefaultOptions()).variant()
}

// readSource returns the encoded bytes behind a source.
func (g *Generator) readSource(ctx context.Context, s Source) ([]byte, error) {
	if !s.IsLocation() {
		if len(s.Data) == 0 {
			return nil, sourceError(s, "read", errors.New("empty blob"))
		}
		return s.Data, nil
	}

	loc := s.Location
	switch {
	case strings.HasPrefix(loc, "data:"):
		data, err := decodeDataURI(loc)
		if err != nil {
			return nil, sourceError(s, "read", err)
		}
		return data, nil

	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return g.fetch(ctx, s)

	case strings.HasPrefix(loc, "file://"):
		u, err := url.Parse(loc)
		if err != nil {
			return nil, sourceError(s, "read", err)
		}
		return g.readFile(s, u.Path)

	default:
		return g.readFile(s, loc)
	}
}

func (g *Generator) fetch(ctx context.Context, s Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return nil, sourceError(s, "fetch", err)
	}
	req.Header.Set("Accept", "image/*")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, sourceError(s, "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, sourceError(s, "fetch", fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes+1))
	if err != nil {
		return nil, sourceError(s, "fetch", err)
	}
	if int64(len(data)) > g.maxBytes {
		return nil, sourceError(s, "fetch", fmt.Errorf("body exceeds %d bytes", g.maxBytes))
	}
	return data, nil
}

func (g *Generator) readFile(s Source, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError(s, "read", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, g.maxBytes+1))
	if err != nil {
		return nil, sourceError(s, "read", err)
	}
	if int64(len(data)) > g.maxBytes {
		return nil, sourceError(s, "read", fmt.Errorf("file exceeds %d bytes", g.maxBytes))
	}
	return data, nil
}

// decodeDataURI extracts the payload of a "data:[<mediatype>][;base64],<data>" URI.
func decodeDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid data URI payload: %w", err)
	}
	return []byte(data), nil
}

// Load resolves a source and decodes it into an image.
//
// JPEG sources are rotated according to their EXIF orientation so placeholders
// match what a browser displays. Every failure matches ErrSourceUnavailable.
func (g *Generator) Load(ctx context.Context, s Source) (image.Image, error) {
	data, err := g.readSource(ctx, s)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, sourceError(s, "decode", err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > g.maxPixels {
		return nil, sourceError(s, "decode",
			fmt.Errorf("image is %dx%d, over the %d pixel limit", cfg.Width, cfg.Height, g.maxPixels))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, sourceError(s, "decode", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, sourceError(s, "decode", errors.New("image has no pixels"))
	}
	return img, nil
}
