// Package loading debounces "show loading" indicators.
//
// A Gate watches an in-flight signal and reports Visible only once an
// operation has been running for a delay, then keeps it visible for a minimum
// duration so fast operations never flash a spinner and slow ones never
// flicker.
package loading

import (
	"sync"
	"time"
)

const (
	// DefaultDelay is how long an operation must be in flight before the
	// indicator shows.
	DefaultDelay = 200 * time.Millisecond

	// DefaultMinDuration is how long the indicator stays up once shown.
	DefaultMinDuration = 500 * time.Millisecond
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so gates can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Gate.
type Option func(*Gate)

// WithDelay sets the show delay. Non-positive values show immediately.
func WithDelay(d time.Duration) Option {
	return func(g *Gate) { g.delay = d }
}

// WithMinDuration sets the minimum visible duration.
func WithMinDuration(d time.Duration) Option {
	return func(g *Gate) { g.minDuration = d }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// WithOnChange registers a callback invoked with the new visibility on every
// transition. It runs outside the gate's lock, possibly on a timer goroutine.
func WithOnChange(fn func(visible bool)) Option {
	return func(g *Gate) { g.onChange = fn }
}

// Gate turns an in-flight signal into a debounced visibility signal.
//
// Transitions:
//   - Visible becomes true only after the delay elapses while still in flight.
//   - When the operation ends, Visible stays true for
//     max(0, minDuration - time since shown) before turning false.
//   - Ending before the delay elapses suppresses the indicator for that cycle.
//   - Restarting while a hide is pending keeps the indicator up.
type Gate struct {
	mu          sync.Mutex
	delay       time.Duration
	minDuration time.Duration
	clock       Clock
	onChange    func(bool)

	inFlight  bool
	visible   bool
	shownAt   time.Time
	showTimer Timer
	hideTimer Timer
	seq       uint64 // invalidates timer callbacks that lost a race with Stop
	stopped   bool
}

// NewGate creates a Gate with the default 200ms delay and 500ms minimum.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		delay:       DefaultDelay,
		minDuration: DefaultMinDuration,
		clock:       realClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Visible reports whether the loading indicator should be shown.
func (g *Gate) Visible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible
}

// SetLoading feeds the in-flight signal. Repeating the current value is a no-op.
func (g *Gate) SetLoading(loading bool) {
	g.mu.Lock()
	if g.stopped || loading == g.inFlight {
		g.mu.Unlock()
		return
	}
	g.inFlight = loading

	var changed bool
	if loading {
		changed = g.start()
	} else {
		changed = g.finish()
	}
	visible := g.visible
	g.mu.Unlock()

	if changed {
		g.notify(visible)
	}
}

// start handles the idle -> in-flight edge. Caller holds mu.
func (g *Gate) start() bool {
	if g.hideTimer != nil {
		g.hideTimer.Stop()
		g.hideTimer = nil
		g.seq++
	}
	if g.visible {
		return false
	}
	if g.delay <= 0 {
		g.show()
		return true
	}

	g.seq++
	seq := g.seq
	g.showTimer = g.clock.AfterFunc(g.delay, func() { g.fire(seq, true) })
	return false
}

// finish handles the in-flight -> idle edge. Caller holds mu.
func (g *Gate) finish() bool {
	if g.showTimer != nil {
		g.showTimer.Stop()
		g.showTimer = nil
	}
	g.seq++

	if !g.visible {
		return false
	}

	remaining := g.minDuration - g.clock.Now().Sub(g.shownAt)
	if remaining <= 0 {
		g.visible = false
		return true
	}

	seq := g.seq
	g.hideTimer = g.clock.AfterFunc(remaining, func() { g.fire(seq, false) })
	return false
}

func (g *Gate) show() {
	g.visible = true
	g.shownAt = g.clock.Now()
}

func (g *Gate) fire(seq uint64, show bool) {
	g.mu.Lock()
	if g.stopped || seq != g.seq || show != g.inFlight {
		g.mu.Unlock()
		return
	}
	if show {
		g.showTimer = nil
		g.show()
	} else {
		g.hideTimer = nil
		g.visible = false
	}
	g.mu.Unlock()

	g.notify(show)
}

func (g *Gate) notify(visible bool) {
	if g.onChange != nil {
		g.onChange(visible)
	}
}

// Stop cancels pending timers and freezes the gate. Visibility does not change
// and no further callbacks fire.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	g.seq++
	if g.showTimer != nil {
		g.showTimer.Stop()
		g.showTimer = nil
	}
	if g.hideTimer != nil {
		g.hideTimer.Stop()
		g.hideTimer = nil
	}
}
