package placeholder

import (
	"context"
	"sync"

	"github.com/ironsheep/placeholder-mcp/internal/loading"
)

// State is what a Binding exposes to its consumer.
type State struct {
	// Placeholder is the committed data URI, empty when none is available.
	Placeholder string

	// Err is the failure of the latest committed load. Consumers fall back to
	// showing no placeholder.
	Err error

	// Loading reports the debounced loading indicator.
	Loading bool
}

// Binding ties placeholder loads to a consumer such as a view, a CLI progress
// line or a request. Only the most recent load may commit its result, and
// nothing commits after Close.
type Binding struct {
	svc  *Service
	gate *loading.Gate

	mu     sync.Mutex
	seq    uint64
	closed bool
	state  State
}

// NewBinding creates a binding. A nil gate gets a default loading.Gate.
func NewBinding(svc *Service, gate *loading.Gate) *Binding {
	if gate == nil {
		gate = loading.NewGate()
	}
	return &Binding{svc: svc, gate: gate}
}

// Load produces a placeholder for src and commits it if it is still relevant.
// It blocks until the load finishes and reports whether the result was
// committed; a superseded or closed binding discards it.
func (b *Binding) Load(ctx context.Context, src Source, opts Options) (State, bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return b.State(), false
	}
	b.seq++
	seq := b.seq
	b.mu.Unlock()

	b.gate.SetLoading(true)
	res, err := b.svc.Placeholder(ctx, src, opts)

	b.mu.Lock()
	if b.closed || seq != b.seq {
		b.mu.Unlock()
		return b.State(), false
	}
	if err != nil {
		b.state = State{Err: err}
	} else {
		b.state = State{Placeholder: res.Placeholder}
	}
	b.mu.Unlock()

	b.gate.SetLoading(false)
	return b.State(), true
}

// State returns the committed state with the current loading indicator.
func (b *Binding) State() State {
	b.mu.Lock()
	st := b.state
	b.mu.Unlock()
	st.Loading = b.gate.Visible()
	return st
}

// Close discards any in-flight result and stops the gate.
func (b *Binding) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.gate.Stop()
}
