package countdown

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/proctor/internal/logger"
)

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func hasKind(events []Event, k Kind) bool {
	for _, ev := range events {
		if ev.Kind == k {
			return true
		}
	}
	return false
}

func TestTickFourSeconds(t *testing.T) {
	cd := New(Config{TotalSeconds: 4, RemindersEnabled: true})
	if !cd.Start() {
		t.Fatal("expected start to succeed")
	}

	tests := []struct {
		remaining    int
		halfway      bool
		threeQuarter bool
		expiry       bool
	}{
		{3, false, false, false},
		{2, true, false, false},
		{1, false, false, false},
		{0, false, false, true},
	}

	for i, tt := range tests {
		events := cd.Tick()
		if cd.Remaining() != tt.remaining {
			t.Fatalf("tick %d: remaining = %d, want %d", i+1, cd.Remaining(), tt.remaining)
		}
		if got := hasKind(events, HalfwayReached); got != tt.halfway {
			t.Fatalf("tick %d: halfway = %t, want %t (%v)", i+1, got, tt.halfway, kinds(events))
		}
		if got := hasKind(events, ThreeQuarterReached); got != tt.threeQuarter {
			t.Fatalf("tick %d: three-quarter = %t, want %t (%v)", i+1, got, tt.threeQuarter, kinds(events))
		}
		if got := hasKind(events, ExpiryReached); got != tt.expiry {
			t.Fatalf("tick %d: expiry = %t, want %t", i+1, got, tt.expiry)
		}
	}

	if cd.Running() {
		t.Fatal("countdown still running after expiry")
	}
	if cd.ThreeQuarterAnnounced() {
		t.Fatal("three-quarter should never fire for a four second exam")
	}
}

func TestTickOneSecondFiresEverything(t *testing.T) {
	cd := New(Config{TotalSeconds: 1, RemindersEnabled: true})
	cd.Start()

	events := cd.Tick()
	want := []Kind{HalfwayReached, ThreeQuarterReached, ExpiryReached}
	got := kinds(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if !cd.HalfwayAnnounced() || !cd.ThreeQuarterAnnounced() {
		t.Fatal("both milestone flags should be set")
	}
	if cd.Remaining() != 0 || cd.Running() {
		t.Fatalf("remaining=%d running=%t after expiry", cd.Remaining(), cd.Running())
	}
}

func TestHalfwayWording(t *testing.T) {
	for _, leave := range []bool{true, false} {
		cd := New(Config{TotalSeconds: 2, RemindersEnabled: true, HalfTimeLeaveAllowed: leave})
		cd.Start()
		events := cd.Tick()
		var found bool
		for _, ev := range events {
			if ev.Kind == HalfwayReached {
				found = true
				if ev.LeavePermitted != leave {
					t.Fatalf("leave=%t: event LeavePermitted=%t", leave, ev.LeavePermitted)
				}
			}
		}
		if !found {
			t.Fatalf("leave=%t: no halfway event in %v", leave, kinds(events))
		}
	}
}

func TestRemindersDisabledStillFlipsFlags(t *testing.T) {
	cd := New(Config{TotalSeconds: 8, RemindersEnabled: false})
	cd.Start()

	for cd.Running() {
		for _, ev := range cd.Tick() {
			if ev.Kind == HalfwayReached || ev.Kind == ThreeQuarterReached {
				t.Fatalf("milestone %s emitted with reminders disabled", ev.Kind)
			}
		}
	}
	if !cd.HalfwayAnnounced() || !cd.ThreeQuarterAnnounced() {
		t.Fatal("milestone flags should flip even when reminders are off")
	}
}

func TestPauseResumeKeepsState(t *testing.T) {
	cd := New(Config{TotalSeconds: 10, RemindersEnabled: true})
	cd.Start()
	for i := 0; i < 5; i++ {
		cd.Tick()
	}
	if !cd.HalfwayAnnounced() {
		t.Fatal("halfway should have fired at 5/10")
	}

	if !cd.Pause() {
		t.Fatal("pause should succeed while running")
	}
	if cd.Pause() {
		t.Fatal("second pause should be a no-op")
	}
	if events := cd.Tick(); events != nil {
		t.Fatalf("tick while paused produced %v", kinds(events))
	}
	if cd.Remaining() != 5 {
		t.Fatalf("remaining changed while paused: %d", cd.Remaining())
	}

	if !cd.Start() {
		t.Fatal("resume should succeed")
	}
	if cd.Start() {
		t.Fatal("start while running should be a no-op")
	}
	events := cd.Tick()
	if cd.Remaining() != 4 {
		t.Fatalf("remaining = %d after resume tick, want 4", cd.Remaining())
	}
	if hasKind(events, HalfwayReached) {
		t.Fatal("halfway fired twice")
	}
	if !cd.HalfwayAnnounced() {
		t.Fatal("halfway flag reset by pause/resume")
	}
}

func TestExpiredIsTerminal(t *testing.T) {
	cd := New(Config{TotalSeconds: 2})
	cd.Start()
	cd.Tick()
	cd.Tick()

	if !cd.Expired() {
		t.Fatal("expected expiry")
	}
	if cd.Start() {
		t.Fatal("start after expiry should fail")
	}
	if events := cd.Tick(); events != nil {
		t.Fatalf("tick after expiry produced %v", kinds(events))
	}
	if cd.Remaining() != 0 {
		t.Fatalf("remaining = %d", cd.Remaining())
	}
}

func TestZeroDurationNeverStarts(t *testing.T) {
	cd := New(Config{TotalSeconds: 0})
	if cd.Start() {
		t.Fatal("zero-length countdown should be terminal")
	}
	neg := New(Config{TotalSeconds: -5})
	if neg.Total() != 0 || neg.Remaining() != 0 {
		t.Fatalf("negative duration not clamped: total=%d remaining=%d", neg.Total(), neg.Remaining())
	}
}

type stubRules struct {
	rules []string
	err   error
	calls int
}

func (s *stubRules) Read(_ context.Context, _, _ string) ([]string, error) {
	s.calls++
	return s.rules, s.err
}

func TestReadRulesAndAnnounce(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	src := &stubRules{rules: []string{"No phones.", "No talking."}}
	cd := New(Config{TotalSeconds: 60, RulesPath: "rules.xlsx", RulesColumn: "rules"})

	ev := cd.ReadRulesAndAnnounce(ctx, src, log)
	if ev.Kind != RulesRead || len(ev.Rules) != 2 {
		t.Fatalf("unexpected event %v", ev)
	}

	// Second call is served from the cached list.
	cd.ReadRulesAndAnnounce(ctx, src, log)
	if src.calls != 1 {
		t.Fatalf("rule source read %d times, want 1", src.calls)
	}

	// Mutating the event must not leak back into the countdown.
	ev.Rules[0] = "changed"
	again := cd.ReadRulesAndAnnounce(ctx, src, log)
	if again.Rules[0] != "No phones." {
		t.Fatalf("rule list mutated through event: %q", again.Rules[0])
	}
}

func TestReadRulesFailureYieldsEmpty(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src := &stubRules{err: errors.New("open missing.xlsx: no such file")}
	cd := New(Config{TotalSeconds: 60, RulesPath: "missing.xlsx", RulesColumn: "rules"})

	ev := cd.ReadRulesAndAnnounce(context.Background(), src, log)
	if ev.Kind != RulesRead || len(ev.Rules) != 0 {
		t.Fatalf("expected empty RulesRead, got %v", ev)
	}
	if !cd.Start() {
		t.Fatal("rule failure must not block start")
	}
}

func TestSnapshotElapsed(t *testing.T) {
	cd := New(Config{TotalSeconds: 4})
	cd.Start()
	cd.Tick()
	s := cd.Snapshot()
	if s.Elapsed() != 0.25 {
		t.Fatalf("elapsed = %f, want 0.25", s.Elapsed())
	}
	if (Snapshot{}).Elapsed() != 1 {
		t.Fatal("zero-length snapshot should report fully elapsed")
	}
}
