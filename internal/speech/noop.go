// Package speech turns announcements into audio: synthesizers, a player,
// a two-tier audio cache and the Mouth dispatcher that serializes them.
package speech

import (
	"context"
	"time"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Voice is what the host needs from a speech pipeline. Mouth speaks;
// NoOp stands in when speech is disabled or no audio device is present.
type Voice interface {
	domain.Announcer
	Say(text string, priority Priority)
	SayWait(ctx context.Context, text string, priority Priority, timeout time.Duration) bool
	AnnounceWait(ctx context.Context, text string, timeout time.Duration) bool
	Prefetch(ctx context.Context, texts ...string)
	Interrupt()
	Idle() bool
	CacheStats() (hits, misses int64)
}

// Compile-time interface check.
var _ Voice = (*NoOp)(nil)

// NoOp is a voice that only logs. Every phrase counts as spoken at once,
// so waiting callers never stall.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent voice.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Announce logs text.
func (n *NoOp) Announce(ctx context.Context, text string) error {
	n.log.Debug("speech no-op: would say %q", text)
	return nil
}

// Say logs text.
func (n *NoOp) Say(text string, priority Priority) {
	n.log.Debug("speech no-op: would say %q (priority=%d)", text, priority)
}

// SayWait logs text and reports it done.
func (n *NoOp) SayWait(ctx context.Context, text string, priority Priority, timeout time.Duration) bool {
	n.Say(text, priority)
	return true
}

// AnnounceWait logs text and reports it done.
func (n *NoOp) AnnounceWait(ctx context.Context, text string, timeout time.Duration) bool {
	_ = n.Announce(ctx, text)
	return true
}

func (n *NoOp) Prefetch(ctx context.Context, texts ...string) {}

func (n *NoOp) Interrupt() {}

func (n *NoOp) Idle() bool { return true }

func (n *NoOp) CacheStats() (hits, misses int64) { return 0, 0 }
