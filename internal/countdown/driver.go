package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/proctor/internal/logger"
)

// Handler consumes countdown signals. Handlers run on the driver goroutine
// outside the state lock; a slow handler delays the next tick, so anything
// blocking (speech) must be dispatched asynchronously.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event)

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// Option configures the driver.
type Option func(*Driver)

// WithTickInterval sets the real time between ticks. The countdown always
// decrements one second per tick; a shorter interval only speeds up tests
// and rehearsals.
func WithTickInterval(d time.Duration) Option {
	return func(dr *Driver) {
		dr.tickInterval = d
	}
}

// WithHandler subscribes a handler to every signal.
func WithHandler(h Handler) Option {
	return func(dr *Driver) {
		dr.handlers = append(dr.handlers, h)
	}
}

// Driver owns a Countdown and advances it once per tick interval. Tick,
// Start and Pause never run concurrently with each other.
//
// The ticker is re-phased on every start so the first decrement after a
// start or resume lands one full interval later.
type Driver struct {
	cd           *Countdown
	log          *logger.Logger
	tickInterval time.Duration
	handlers     []Handler

	mu     sync.Mutex
	rearm  bool          // set by Start, cleared once Run has reset the ticker
	rearmC chan struct{} // wakes Run to reset the ticker
	done   chan struct{}
	once   sync.Once
}

// NewDriver creates a driver for cd with the given options.
func NewDriver(cd *Countdown, log *logger.Logger, opts ...Option) *Driver {
	d := &Driver{
		cd:           cd,
		log:          log,
		tickInterval: 1 * time.Second,
		rearmC:       make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Done is closed when the countdown expires or Run returns.
func (d *Driver) Done() <-chan struct{} { return d.done }

// Snapshot returns the current countdown state.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cd.Snapshot()
}

// Start sets the countdown running. Returns false if it was already running
// or has expired.
func (d *Driver) Start(ctx context.Context) bool {
	d.mu.Lock()
	ok := d.cd.Start()
	if ok {
		d.rearm = true
	}
	ev := d.cd.event(Started)
	d.mu.Unlock()

	if ok {
		select {
		case d.rearmC <- struct{}{}:
		default: // already signaled
		}
		d.log.Info("countdown started (%ds remaining)", ev.Remaining)
		d.emit(ctx, ev)
	}
	return ok
}

// Pause stops the countdown. Returns false if it was not running.
func (d *Driver) Pause(ctx context.Context) bool {
	d.mu.Lock()
	ok := d.cd.Pause()
	ev := d.cd.event(Paused)
	d.mu.Unlock()

	if ok {
		d.log.Info("countdown paused (%ds remaining)", ev.Remaining)
		d.emit(ctx, ev)
	}
	return ok
}

// Toggle starts an idle countdown or pauses a running one.
func (d *Driver) Toggle(ctx context.Context) {
	if !d.Start(ctx) {
		d.Pause(ctx)
	}
}

// ReadRules fetches the rules through the countdown and broadcasts the
// RulesRead signal.
func (d *Driver) ReadRules(ctx context.Context, read func(*Countdown) Event) Event {
	d.mu.Lock()
	ev := read(d.cd)
	d.mu.Unlock()

	d.emit(ctx, ev)
	return ev
}

// Run drives the countdown until it expires or ctx is cancelled. Blocks.
func (d *Driver) Run(ctx context.Context) {
	defer d.finish()

	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	d.log.Debug("countdown driver running (tick=%s, total=%ds)", d.tickInterval, d.cd.Total())

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.rearmC:
			d.mu.Lock()
			d.rearm = false
			d.mu.Unlock()
			ticker.Reset(d.tickInterval)
		case <-ticker.C:
			expired, rearmed := d.tick(ctx)
			if expired {
				return
			}
			if rearmed {
				ticker.Reset(d.tickInterval)
			}
		}
	}
}

// tick runs one cycle and reports whether the countdown expired. A tick
// that arrives after a start the loop has not re-phased for yet is
// dropped, and rearmed reports that the ticker must be reset.
func (d *Driver) tick(ctx context.Context) (expired, rearmed bool) {
	d.mu.Lock()
	if d.rearm {
		d.rearm = false
		d.mu.Unlock()
		return false, true
	}
	events := d.cd.Tick()
	d.mu.Unlock()

	for _, ev := range events {
		if ev.Kind != TimeUpdated {
			d.log.Debug("countdown: %s", ev)
		}
		if ev.Kind == ExpiryReached {
			expired = true
		}
		d.emit(ctx, ev)
	}
	return expired, false
}

func (d *Driver) emit(ctx context.Context, ev Event) {
	for _, h := range d.handlers {
		d.safeHandle(ctx, h, ev)
	}
}

// safeHandle keeps a panicking handler from killing the ticker.
func (d *Driver) safeHandle(ctx context.Context, h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("countdown: handler panicked on %s: %v", ev.Kind, r)
		}
	}()
	h.HandleEvent(ctx, ev)
}

func (d *Driver) finish() {
	d.once.Do(func() { close(d.done) })
}
