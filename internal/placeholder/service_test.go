package placeholder

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRecorder struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (r *fakeRecorder) Inc(_ context.Context, name string, labels map[string]string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int64)
	}
	key := name
	for k, v := range labels {
		key += "," + k + "=" + v
	}
	r.counts[key] += n
}

func (r *fakeRecorder) get(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func TestService_Placeholder(t *testing.T) {
	srv := newImageServer(t, map[string]image.Image{"a": noiseImage(60, 40)})
	rec := &fakeRecorder{}
	svc := NewService(srv.generator(), nil, WithRecorder(rec))
	src := FromLocation(srv.url("a"))

	first, err := svc.Placeholder(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, srv.url("a"), first.Key)
	assert.Equal(t, 20, first.Width)
	assert.Equal(t, 20, first.Height)
	assert.Equal(t, 0.3, first.Quality)

	second, err := svc.Placeholder(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Placeholder, second.Placeholder)

	assert.Equal(t, 1, srv.hitCount("/img/a.png"), "cached source should be fetched once")
	assert.Equal(t, int64(1), rec.get("placeholder_cache_misses_total"))
	assert.Equal(t, int64(1), rec.get("placeholder_cache_hits_total"))
}

func TestService_Placeholder_VariantsDoNotCollide(t *testing.T) {
	srv := newImageServer(t, map[string]image.Image{"a": noiseImage(60, 40)})
	svc := NewService(srv.generator(), nil)
	src := FromLocation(srv.url("a"))

	small, err := svc.Placeholder(context.Background(), src, Options{Width: 10, Height: 10, Quality: 0.1})
	require.NoError(t, err)
	def, err := svc.Placeholder(context.Background(), src, Options{})
	require.NoError(t, err)

	assert.NotEqual(t, small.Key, def.Key)
	assert.NotEqual(t, small.Placeholder, def.Placeholder)
	assert.Equal(t, 2, svc.Cache().Stats().Entries)
}

func TestService_Placeholder_FailureRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(NewGenerator(GeneratorConfig{}), nil, WithRecorder(rec))

	_, err := svc.Placeholder(context.Background(), FromBlob([]byte("nope")), Options{})
	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int64(1), rec.get("placeholder_failures_total,reason=source_unavailable"))
	assert.Equal(t, 0, svc.Cache().Stats().Entries)
}

func TestService_Batch_PartialFailure(t *testing.T) {
	srv := newImageServer(t, map[string]image.Image{
		"one":   noiseImage(30, 30),
		"two":   solidImage(30, 30, color.NRGBA{0, 128, 255, 255}),
		"three": quadrantImage(40, 20),
	})
	core, logs := observer.New(zap.WarnLevel)
	svc := NewService(srv.generator(), nil, WithLogger(zap.New(core)))

	sources := []Source{
		FromLocation(srv.url("one")),
		FromLocation(srv.URL + "/missing-a.png"),
		FromLocation(srv.url("two")),
		FromLocation(srv.URL + "/missing-b.png"),
		FromLocation(srv.url("three")),
	}

	res := svc.Batch(context.Background(), sources, Options{})

	require.Len(t, res.Placeholders, 3)
	for _, name := range []string{"one", "two", "three"} {
		uri, ok := res.Placeholders[srv.url(name)]
		require.True(t, ok, "missing placeholder for %s", name)
		img, _ := decodePlaceholder(t, uri)
		assert.Equal(t, 20, img.Bounds().Dx())
	}

	require.Len(t, res.Failures, 2)
	assert.Equal(t, srv.URL+"/missing-a.png", res.Failures[0].ID)
	assert.Equal(t, srv.URL+"/missing-b.png", res.Failures[1].ID)
	assert.Contains(t, res.Failures[0].Error, "404")

	assert.Equal(t, 2, logs.FilterMessage("batch placeholder failed").Len())
}

func TestService_Batch_Blobs(t *testing.T) {
	svc := NewService(NewGenerator(GeneratorConfig{}), nil)
	good := pngBytes(t, noiseImage(20, 20))

	res := svc.Batch(context.Background(), []Source{
		FromBlob(good),
		{Data: good, Name: "named.png"},
		FromBlob([]byte("garbage")),
	}, Options{Width: 8, Height: 8})

	assert.Len(t, res.Placeholders, 2)
	assert.Contains(t, res.Placeholders, "blob-0")
	assert.Contains(t, res.Placeholders, "named.png")
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "blob-2", res.Failures[0].ID)

	// Identical bytes share one cache entry.
	assert.Equal(t, 1, svc.Cache().Stats().Entries)
}

func TestService_Batch_DuplicateNames(t *testing.T) {
	svc := NewService(NewGenerator(GeneratorConfig{}), nil)
	good := pngBytes(t, noiseImage(20, 20))
	other := pngBytes(t, solidImage(20, 20, color.Black))

	res := svc.Batch(context.Background(), []Source{
		{Data: good, Name: "photo.png"},
		{Data: []byte("garbage"), Name: "photo.png"},
		{Data: other, Name: "photo.png"},
	}, Options{Width: 8, Height: 8})

	assert.Equal(t, []string{"photo.png", "photo.png#2"}, sortedKeys(res.Placeholders))
	assert.NotEqual(t, res.Placeholders["photo.png"], res.Placeholders["photo.png#2"])
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "photo.png#1", res.Failures[0].ID)
	assert.NotContains(t, res.Placeholders, res.Failures[0].ID)
}

func TestService_Placeholder_TooLarge(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(NewGenerator(GeneratorConfig{MaxDimension: 64}), nil, WithRecorder(rec))
	src := FromBlob(pngBytes(t, solidImage(4, 4, color.White)))

	for _, opts := range []Options{
		{Width: 1 << 30, Height: 1 << 30},
		{Width: 65},
		{Height: 3000},
	} {
		_, err := svc.Placeholder(context.Background(), src, opts)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", opts)
		assert.ErrorIs(t, svc.CheckOptions(opts), ErrInvalidRequest, "%+v", opts)
	}
	assert.Equal(t, int64(3), rec.get("placeholder_failures_total,reason=invalid_request"))
	assert.Equal(t, int64(0), svc.Cache().Stats().Misses, "oversized requests never reach the cache")

	res, err := svc.Placeholder(context.Background(), src, Options{Width: 64, Height: 64})
	require.NoError(t, err)
	assert.Equal(t, 64, res.Width)
	assert.NoError(t, svc.CheckOptions(Options{}))

	batch := svc.Batch(context.Background(), []Source{src}, Options{Width: 100})
	assert.Empty(t, batch.Placeholders)
	require.Len(t, batch.Failures, 1)
	assert.Contains(t, batch.Failures[0].Error, "exceeds")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestService_Batch_Empty(t *testing.T) {
	svc := NewService(NewGenerator(GeneratorConfig{}), nil)
	res := svc.Batch(context.Background(), nil, Options{})
	assert.Empty(t, res.Placeholders)
	assert.Empty(t, res.Failures)
}

func TestService_Palette(t *testing.T) {
	svc := NewService(NewGenerator(GeneratorConfig{}), nil)
	p, err := svc.Palette(context.Background(), FromBlob(pngBytes(t, quadrantImage(64, 64))), 4)
	require.NoError(t, err)
	assert.Len(t, p.Colors, 4)

	_, err = svc.Palette(context.Background(), FromBlob(nil), 4)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "source_unavailable", failureReason(&SourceError{Err: errors.New("x")}))
	assert.Equal(t, "render_surface_unavailable", failureReason(surfaceError(errors.New("x"))))
	assert.Equal(t, "cancelled", failureReason(context.Canceled))
	assert.Equal(t, "invalid_request", failureReason(Options{Width: 300}.Check(256)))
	assert.Equal(t, "other", failureReason(errors.New("x")))
}
