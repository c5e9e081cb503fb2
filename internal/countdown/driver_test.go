package countdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/proctor/internal/logger"
)

// recordingHandler collects signals for assertions.
type recordingHandler struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingHandler) HandleEvent(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingHandler) count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

func TestDriverRunsToExpiry(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	rec := &recordingHandler{}
	cd := New(Config{TotalSeconds: 8, RemindersEnabled: true})
	drv := NewDriver(cd, log, WithTickInterval(5*time.Millisecond), WithHandler(rec))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go drv.Run(ctx)
	drv.Start(ctx)

	select {
	case <-drv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not reach expiry")
	}

	if rec.count(ExpiryReached) != 1 {
		t.Fatalf("expiry fired %d times", rec.count(ExpiryReached))
	}
	if rec.count(HalfwayReached) != 1 || rec.count(ThreeQuarterReached) != 1 {
		t.Fatalf("milestones: halfway=%d three-quarter=%d", rec.count(HalfwayReached), rec.count(ThreeQuarterReached))
	}
	if rec.count(Started) != 1 {
		t.Fatalf("started fired %d times", rec.count(Started))
	}
	if s := drv.Snapshot(); s.Remaining != 0 || s.Running {
		t.Fatalf("unexpected final snapshot %+v", s)
	}
}

func TestDriverIdleUntilStarted(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	rec := &recordingHandler{}
	cd := New(Config{TotalSeconds: 5})
	drv := NewDriver(cd, log, WithTickInterval(5*time.Millisecond), WithHandler(rec))

	ctx, cancel := context.WithCancel(context.Background())
	go drv.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	if s := drv.Snapshot(); s.Remaining != 5 {
		t.Fatalf("countdown moved before start: %d", s.Remaining)
	}

	cancel()
	select {
	case <-drv.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after cancel")
	}
}

func TestDriverToggle(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	rec := &recordingHandler{}
	cd := New(Config{TotalSeconds: 100})
	drv := NewDriver(cd, log, WithHandler(rec))
	ctx := context.Background()

	drv.Toggle(ctx)
	if !drv.Snapshot().Running {
		t.Fatal("toggle should start an idle countdown")
	}
	drv.Toggle(ctx)
	if drv.Snapshot().Running {
		t.Fatal("toggle should pause a running countdown")
	}
	if rec.count(Started) != 1 || rec.count(Paused) != 1 {
		t.Fatalf("started=%d paused=%d", rec.count(Started), rec.count(Paused))
	}
}

func TestDriverSurvivesPanickingHandler(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	rec := &recordingHandler{}
	boom := HandlerFunc(func(context.Context, Event) { panic("speaker unplugged") })
	cd := New(Config{TotalSeconds: 3})
	drv := NewDriver(cd, log, WithTickInterval(5*time.Millisecond), WithHandler(boom), WithHandler(rec))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go drv.Run(ctx)
	drv.Start(ctx)

	select {
	case <-drv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("driver stalled after handler panic")
	}
	if rec.count(ExpiryReached) != 1 {
		t.Fatal("second handler missed expiry")
	}
}

// tickTimes reports when each TimeUpdated signal arrives.
type tickTimes chan time.Time

func (c tickTimes) HandleEvent(_ context.Context, ev Event) {
	if ev.Kind == TimeUpdated {
		c <- time.Now()
	}
}

func TestDriverFirstTickOneIntervalAfterStart(t *testing.T) {
	const interval = 200 * time.Millisecond
	log := logger.New(logger.LevelOff, nil)
	ticks := make(tickTimes, 16)
	cd := New(Config{TotalSeconds: 100})
	drv := NewDriver(cd, log, WithTickInterval(interval), WithHandler(ticks))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go drv.Run(ctx)

	for cycle := 0; cycle < 3; cycle++ {
		// Land the start late in the ticker's period.
		time.Sleep(interval * 9 / 10)

		started := time.Now()
		if !drv.Start(ctx) {
			t.Fatalf("cycle %d: start refused", cycle)
		}

		select {
		case at := <-ticks:
			if gap := at.Sub(started); gap < interval*3/4 {
				t.Fatalf("cycle %d: first decrement %s after start, want about %s", cycle, gap, interval)
			}
		case <-time.After(5 * interval):
			t.Fatalf("cycle %d: no tick after start", cycle)
		}

		drv.Pause(ctx)
		if s := drv.Snapshot(); s.Remaining != 100-(cycle+1) {
			t.Fatalf("cycle %d: remaining %d", cycle, s.Remaining)
		}
	}
}
