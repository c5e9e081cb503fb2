package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/proctor/internal/countdown"
	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
	"github.com/hammamikhairi/proctor/internal/speech"
)

// Outcome is how a session ended. The host turns it into an exit code.
type Outcome int

const (
	OutcomeFinished Outcome = iota // the countdown reached zero
	OutcomeAborted                 // the operator left early
)

// String returns a human-readable outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Session is one prepared exam sitting: its countdown driver, its history
// record and the announcements tied to both.
type Session struct {
	ID     string
	Config domain.ExamConfig

	engine *Engine
	driver *countdown.Driver
	log    *logger.Logger

	mu      sync.Mutex
	record  domain.Session
	started bool // a Started signal has been seen at least once
}

// Snapshot returns the countdown state for rendering.
func (s *Session) Snapshot() countdown.Snapshot { return s.driver.Snapshot() }

// Record returns a copy of the history record.
func (s *Session) Record() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Start begins or resumes the countdown.
func (s *Session) Start(ctx context.Context) bool { return s.driver.Start(ctx) }

// Pause holds the countdown. Speech already queued keeps playing.
func (s *Session) Pause(ctx context.Context) bool { return s.driver.Pause(ctx) }

// Toggle starts an idle countdown or pauses a running one.
func (s *Session) Toggle(ctx context.Context) { s.driver.Toggle(ctx) }

// Instruct reads the rules once and narrates the welcome followed by each
// rule. Each phrase is waited on for at most the engine's phrase wait, so a
// dead audio device slows nothing down for long. It may run concurrently
// with the countdown and returns early when ctx is done.
func (s *Session) Instruct(ctx context.Context) {
	e := s.engine
	ev := s.driver.ReadRules(ctx, func(cd *countdown.Countdown) countdown.Event {
		return cd.ReadRulesAndAnnounce(ctx, e.rules, s.log)
	})

	s.mu.Lock()
	s.record.RulesRead = len(ev.Rules)
	rec := s.record
	s.mu.Unlock()
	s.save(ctx, &rec)

	phrases := []string{speech.LineWelcome()}
	if intro := speech.LineCourse(s.Config.Course, s.Config.Instructor); intro != "" {
		phrases = append(phrases, intro)
	}
	if len(ev.Rules) == 0 {
		phrases = append(phrases, speech.LineNoRules())
	}
	for i, rule := range ev.Rules {
		phrases = append(phrases, speech.LineRule(i+1, rule))
	}
	phrases = append(phrases, speech.LineExamDuration(s.Config.Duration()))

	s.log.Info("narrating %d phrases (%d rules)", len(phrases), len(ev.Rules))

	for _, p := range phrases {
		if ctx.Err() != nil {
			s.log.Debug("instructions cut short: %v", ctx.Err())
			return
		}
		if err := e.notifier.Notify(ctx, p); err != nil {
			s.log.Warn("announcing instruction: %v", err)
			continue
		}
		if e.waiter != nil {
			e.waiter.AnnounceWait(ctx, p, e.phraseWait)
		}
	}
}

// Run drives the countdown until it expires or ctx is cancelled, then
// closes the history record. Blocks.
func (s *Session) Run(ctx context.Context) Outcome {
	if s.driver.Snapshot().Expired {
		// A zero-length exam is over before it starts.
		s.announce(ctx, speech.LineTimeUp(), true)
		s.close(ctx, domain.SessionFinished, 0)
		return OutcomeFinished
	}

	s.driver.Run(ctx)

	snap := s.driver.Snapshot()
	outcome := OutcomeAborted
	status := domain.SessionAborted
	if snap.Expired {
		outcome = OutcomeFinished
		status = domain.SessionFinished
	}
	s.close(ctx, status, snap.Remaining)
	s.log.Info("session ended: %s (%ds remaining)", outcome, snap.Remaining)
	return outcome
}

// handleEvent maps countdown signals to announcements and history updates.
// Runs on the driver's goroutine for ticks and on the caller's for
// start and pause.
func (s *Session) handleEvent(ctx context.Context, ev countdown.Event) {
	remaining := time.Duration(ev.Remaining) * time.Second

	switch ev.Kind {
	case countdown.Started:
		s.mu.Lock()
		first := !s.started
		s.started = true
		if s.record.StartedAt.IsZero() {
			s.record.StartedAt = time.Now()
		}
		s.record.Status = domain.SessionRunning
		s.record.Remaining = remaining
		rec := s.record
		s.mu.Unlock()
		s.save(ctx, &rec)

		if first {
			s.announce(ctx, speech.LineStarted(), false)
		} else {
			s.announce(ctx, speech.LineResumed(), false)
		}

	case countdown.Paused:
		s.mu.Lock()
		s.record.Status = domain.SessionPaused
		s.record.Remaining = remaining
		rec := s.record
		s.mu.Unlock()
		s.save(ctx, &rec)
		s.announce(ctx, speech.LinePaused(), false)

	case countdown.HalfwayReached:
		s.announce(ctx, speech.LineHalfway(remaining, ev.LeavePermitted), false)

	case countdown.ThreeQuarterReached:
		s.announce(ctx, speech.LineThreeQuarter(remaining), false)

	case countdown.ExpiryReached:
		s.announce(ctx, speech.LineTimeUp(), true)
	}
}

// announce never fails the caller; a broken speaker must not stop the clock.
func (s *Session) announce(ctx context.Context, text string, urgent bool) {
	var err error
	if urgent {
		err = s.engine.notifier.NotifyUrgent(ctx, text)
	} else {
		err = s.engine.notifier.Notify(ctx, text)
	}
	if err != nil {
		s.log.Warn("announcement failed: %v", err)
	}
}

func (s *Session) close(ctx context.Context, status domain.SessionStatus, remaining int) {
	s.mu.Lock()
	s.record.Status = status
	s.record.Remaining = time.Duration(remaining) * time.Second
	s.record.EndedAt = time.Now()
	rec := s.record
	s.mu.Unlock()

	// ctx is usually cancelled by now; the record still has to land.
	s.save(context.WithoutCancel(ctx), &rec)
}

func (s *Session) save(ctx context.Context, rec *domain.Session) {
	if err := s.engine.store.Save(ctx, rec); err != nil {
		s.log.Error("saving session: %v", err)
	}
}
