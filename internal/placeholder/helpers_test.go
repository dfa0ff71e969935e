package placeholder

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// solidImage creates an in-memory image filled with c.
func solidImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// noiseImage creates a deterministic high-detail image so JPEG quality
// visibly changes the encoded size.
func noiseImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8((x*37 + y*91 + x*y*13) % 256),
				G: uint8((x*71 + y*17) % 256),
				B: uint8((x*x + y*y*5) % 256),
				A: 255,
			})
		}
	}
	return img
}

// quadrantImage creates an image with red, green, blue and white quadrants.
func quadrantImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.NRGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.NRGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.NRGBA{0, 0, 255, 255}
			default:
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// writeTempPNG writes img to a temp file and returns its path.
func writeTempPNG(t *testing.T, img image.Image) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "source-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

// decodePlaceholder decodes a placeholder data URI back into an image.
func decodePlaceholder(t *testing.T, uri string) (image.Image, []byte) {
	t.Helper()
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Fatalf("placeholder %q does not start with %q", truncate(uri), DataURIPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode JPEG: %v", err)
	}
	return img, raw
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

// imageServer serves PNG images under /img/<name>.png and counts requests.
// Any other path returns 404.
type imageServer struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newImageServer(t *testing.T, images map[string]image.Image) *imageServer {
	t.Helper()
	encoded := make(map[string][]byte, len(images))
	for name, img := range images {
		encoded["/img/"+name+".png"] = pngBytes(t, img)
	}

	s := &imageServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		data, ok := encoded[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(func() {
		s.Client().CloseIdleConnections()
		s.Close()
	})
	return s
}

func (s *imageServer) url(name string) string {
	return s.URL + "/img/" + name + ".png"
}

func (s *imageServer) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *imageServer) generator() *Generator {
	return NewGenerator(GeneratorConfig{HTTPClient: s.Client()})
}
