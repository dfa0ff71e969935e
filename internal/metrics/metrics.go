// Package metrics keeps labelled counters for the /metrics endpoints and
// mirrors every increment to OpenTelemetry.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the mirrored counters.
const MeterName = "github.com/ironsheep/placeholder-mcp"

// Registry stores counters for exposition and mirrors them to OTel counters.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64 // key = fullKey(name, labels)
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter // base name -> instrument
}

// NewRegistry creates a registry bound to the global meter provider.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		meter:    otel.GetMeterProvider().Meter(MeterName),
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

// fullKey renders name{k=v,...} with labels sorted by key.
func fullKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Inc increases a named counter by n and records the increment on the
// matching OTel counter.
func (r *Registry) Inc(ctx context.Context, name string, labels map[string]string, n int64) {
	key := fullKey(name, labels)

	r.mu.RLock()
	c := r.counters[key]
	inst := r.otelCtrs[name]
	r.mu.RUnlock()

	if c == nil || inst == nil {
		r.mu.Lock()
		if c = r.counters[key]; c == nil {
			c = new(atomic.Int64)
			r.counters[key] = c
		}
		if inst = r.otelCtrs[name]; inst == nil {
			ctr, err := r.meter.Int64Counter(name)
			if err == nil {
				r.otelCtrs[name] = ctr
				inst = ctr
			}
		}
		r.mu.Unlock()
	}
	c.Add(n)

	if inst != nil {
		attrs := make([]attribute.KeyValue, 0, len(labels))
		for k, v := range labels {
			attrs = append(attrs, attribute.String(k, v))
		}
		inst.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// Value returns the current value of a counter, or 0 if it was never touched.
func (r *Registry) Value(name string, labels map[string]string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.counters[fullKey(name, labels)]; c != nil {
		return c.Load()
	}
	return 0
}

// SnapshotLines returns "key value" lines sorted by key.
func (r *Registry) SnapshotLines() []string {
	snap := r.SnapshotJSON()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %d", k, snap[k]))
	}
	return lines
}

// SnapshotJSON returns a map of counter key to value.
func (r *Registry) SnapshotJSON() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v.Load()
	}
	return out
}

// EchoHandlerText writes counters in a plain text format.
func (r *Registry) EchoHandlerText(c echo.Context) error {
	lines := r.SnapshotLines()
	return c.String(http.StatusOK, strings.Join(lines, "\n")+"\n")
}

// EchoHandlerJSON writes counters as a JSON object.
func (r *Registry) EchoHandlerJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, r.SnapshotJSON())
}
