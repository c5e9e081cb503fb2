// Package countdown implements the exam countdown state machine and the
// ticker that drives it.
//
// The state machine never performs I/O. Every observable effect is returned
// as an [Event] so callers decide how to render or announce it.
package countdown

import (
	"context"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Config is the immutable part of a countdown.
type Config struct {
	TotalSeconds         int
	RemindersEnabled     bool
	HalfTimeLeaveAllowed bool

	// RulesPath and RulesColumn locate the rules narrated before the exam.
	RulesPath   string
	RulesColumn string
}

// FromExam builds a countdown configuration from the setup form values.
func FromExam(cfg domain.ExamConfig) Config {
	return Config{
		TotalSeconds:         cfg.TotalSeconds(),
		RemindersEnabled:     cfg.RemindersEnabled,
		HalfTimeLeaveAllowed: cfg.HalfTimeLeaveAllowed,
		RulesPath:            cfg.RulesPath,
		RulesColumn:          cfg.Column(),
	}
}

// Countdown is the per-session exam clock. It is not safe for concurrent
// use; the Driver serializes access.
type Countdown struct {
	cfg Config

	remaining             int
	running               bool
	halfwayAnnounced      bool
	threeQuarterAnnounced bool

	rules     []string
	rulesRead bool
}

// New creates an idle countdown. Negative durations are clamped to zero.
func New(cfg Config) *Countdown {
	if cfg.TotalSeconds < 0 {
		cfg.TotalSeconds = 0
	}
	return &Countdown{cfg: cfg, remaining: cfg.TotalSeconds}
}

// Total returns the exam length in seconds.
func (c *Countdown) Total() int { return c.cfg.TotalSeconds }

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int { return c.remaining }

// Running reports whether the countdown is ticking.
func (c *Countdown) Running() bool { return c.running }

// Expired reports whether the countdown reached zero. Expiry is terminal.
func (c *Countdown) Expired() bool { return c.remaining == 0 }

// HalfwayAnnounced reports whether the halfway milestone has been crossed.
func (c *Countdown) HalfwayAnnounced() bool { return c.halfwayAnnounced }

// ThreeQuarterAnnounced reports whether the three-quarter milestone has
// been crossed.
func (c *Countdown) ThreeQuarterAnnounced() bool { return c.threeQuarterAnnounced }

// Start sets the countdown running. It returns false when the countdown is
// already running or has expired.
func (c *Countdown) Start() bool {
	if c.running || c.Expired() {
		return false
	}
	c.running = true
	return true
}

// Pause stops the countdown without touching remaining time or milestone
// flags. It returns false when the countdown was not running.
func (c *Countdown) Pause() bool {
	if !c.running {
		return false
	}
	c.running = false
	return true
}

// Tick advances the countdown by one second and returns the signals it
// produced, in order. Ticking an idle or expired countdown returns nil.
//
// A tick that reaches zero ends the countdown. If the halfway mark was
// never crossed before that (a one-second exam), every pending milestone
// fires together with ExpiryReached; otherwise expiry supersedes any
// milestone still outstanding.
func (c *Countdown) Tick() []Event {
	if !c.running {
		return nil
	}

	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false

		var events []Event
		if !c.halfwayAnnounced {
			events = c.checkMilestones(events)
		}
		return append(events, c.event(ExpiryReached))
	}

	events := []Event{c.event(TimeUpdated)}
	return c.checkMilestones(events)
}

// checkMilestones evaluates both milestones independently; both may fire on
// the same tick.
func (c *Countdown) checkMilestones(events []Event) []Event {
	total := c.cfg.TotalSeconds

	// remaining/total <= 0.5
	if !c.halfwayAnnounced && 2*c.remaining <= total {
		c.halfwayAnnounced = true
		if c.cfg.RemindersEnabled {
			ev := c.event(HalfwayReached)
			ev.LeavePermitted = c.cfg.HalfTimeLeaveAllowed
			events = append(events, ev)
		}
	}

	// remaining/total < 0.25
	if !c.threeQuarterAnnounced && 4*c.remaining < total {
		c.threeQuarterAnnounced = true
		if c.cfg.RemindersEnabled {
			events = append(events, c.event(ThreeQuarterReached))
		}
	}

	return events
}

// ReadRulesAndAnnounce fetches the rule list once and returns it as a
// RulesRead signal. A failed read yields an empty list; the countdown state
// is never affected. Later calls return the cached list without touching
// the source.
func (c *Countdown) ReadRulesAndAnnounce(ctx context.Context, src domain.RuleSource, log *logger.Logger) Event {
	if !c.rulesRead {
		c.rulesRead = true
		if src != nil && c.cfg.RulesPath != "" {
			rules, err := src.Read(ctx, c.cfg.RulesPath, c.cfg.RulesColumn)
			if err != nil {
				log.Warn("countdown: reading rules from %s: %v (continuing without rules)", c.cfg.RulesPath, err)
			} else {
				c.rules = rules
			}
		}
	}

	ev := c.event(RulesRead)
	ev.Rules = append([]string(nil), c.rules...)
	return ev
}

// Snapshot is a read-only view of the countdown for presentation.
type Snapshot struct {
	Total                 int
	Remaining             int
	Running               bool
	Expired               bool
	HalfwayAnnounced      bool
	ThreeQuarterAnnounced bool
}

// Elapsed returns the fraction of the exam that has passed, in [0, 1].
func (s Snapshot) Elapsed() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Total-s.Remaining) / float64(s.Total)
}

// Snapshot returns the current state.
func (c *Countdown) Snapshot() Snapshot {
	return Snapshot{
		Total:                 c.cfg.TotalSeconds,
		Remaining:             c.remaining,
		Running:               c.running,
		Expired:               c.Expired(),
		HalfwayAnnounced:      c.halfwayAnnounced,
		ThreeQuarterAnnounced: c.threeQuarterAnnounced,
	}
}

func (c *Countdown) event(k Kind) Event {
	return Event{Kind: k, Remaining: c.remaining, Total: c.cfg.TotalSeconds}
}
