package speech

import (
	"context"
	"sync"
	"testing"

	"github.com/hammamikhairi/proctor/internal/logger"
)

type captionNotifier struct {
	msgs   []string
	urgent []string
}

func (c *captionNotifier) Notify(_ context.Context, msg string) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captionNotifier) NotifyUrgent(_ context.Context, msg string) error {
	c.urgent = append(c.urgent, msg)
	return nil
}

type recordingSpeaker struct {
	mu    sync.Mutex
	said  []string
	prios []Priority
}

func (r *recordingSpeaker) Say(text string, p Priority) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.said = append(r.said, text)
	r.prios = append(r.prios, p)
}

// Announce records text at normal priority, as Mouth does.
func (r *recordingSpeaker) Announce(_ context.Context, text string) error {
	r.Say(text, PriorityNormal)
	return nil
}

func TestSpeakingNotifier(t *testing.T) {
	caption := &captionNotifier{}
	speaker := &recordingSpeaker{}
	n := NewSpeakingNotifier(caption, speaker, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	_ = n.Notify(ctx, "[INFO] \x1b[1mHalf of the exam time has passed.\x1b[0m")
	_ = n.NotifyUrgent(ctx, "Time is up.")
	_ = n.Notify(ctx, "[INFO]")

	if len(caption.msgs) != 2 || len(caption.urgent) != 1 {
		t.Fatalf("captions not forwarded: %v %v", caption.msgs, caption.urgent)
	}
	if len(speaker.said) != 2 {
		t.Fatalf("expected 2 spoken lines, got %v", speaker.said)
	}
	if speaker.said[0] != "Half of the exam time has passed." {
		t.Fatalf("formatting not stripped: %q", speaker.said[0])
	}
	if speaker.prios[0] != PriorityNormal {
		t.Fatalf("routine messages should be announced at normal priority, got %d", speaker.prios[0])
	}
	if speaker.prios[1] != PriorityHigh {
		t.Fatalf("urgent should speak at high priority, got %d", speaker.prios[1])
	}
}

func TestNoOpVoice(t *testing.T) {
	var v Voice = NewNoOp(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	caption := &captionNotifier{}
	n := NewSpeakingNotifier(caption, v, logger.New(logger.LevelOff, nil))
	if err := n.Notify(ctx, "The exam has started."); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(caption.msgs) != 1 {
		t.Fatalf("caption not shown with silent voice: %v", caption.msgs)
	}

	if !v.AnnounceWait(ctx, "rule one", 0) {
		t.Fatal("silent voice should report phrases done at once")
	}
	if !v.SayWait(ctx, "rule two", PriorityHigh, 0) {
		t.Fatal("silent voice should report phrases done at once")
	}
	v.Prefetch(ctx, LineTimeUp())
	v.Interrupt()
	if !v.Idle() {
		t.Fatal("silent voice is always idle")
	}
	if hits, misses := v.CacheStats(); hits != 0 || misses != 0 {
		t.Fatalf("silent voice has no cache: %d/%d", hits, misses)
	}
}
