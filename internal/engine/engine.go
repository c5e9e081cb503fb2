// Package engine turns a validated exam configuration into a running,
// narrated countdown and records its history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for logo validation
	_ "image/png"  // register decoder for logo validation
	"os"
	"time"

	"github.com/hammamikhairi/proctor/internal/countdown"
	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// PhraseWaiter blocks until a queued phrase has been spoken or the timeout
// passes. Implemented by speech.Mouth.
type PhraseWaiter interface {
	AnnounceWait(ctx context.Context, text string, timeout time.Duration) bool
}

// Option configures the engine.
type Option func(*Engine)

// WithTickInterval sets the countdown tick. Tests shorten it.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}

// WithPhraseWaiter lets Instruct pace the rules, waiting for each phrase
// before queueing the next one.
func WithPhraseWaiter(w PhraseWaiter) Option {
	return func(e *Engine) {
		e.waiter = w
	}
}

// WithPhraseWait bounds how long Instruct waits for a single phrase.
func WithPhraseWait(d time.Duration) Option {
	return func(e *Engine) {
		e.phraseWait = d
	}
}

// Engine prepares exam sessions. It depends only on interfaces and is
// fully testable with fakes.
type Engine struct {
	rules    domain.RuleSource
	store    domain.SessionStore
	notifier domain.Notifier
	waiter   PhraseWaiter
	log      *logger.Logger

	tickInterval time.Duration
	phraseWait   time.Duration
}

// New creates an engine with the given dependencies and options.
func New(rules domain.RuleSource, store domain.SessionStore, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		rules:        rules,
		store:        store,
		notifier:     notifier,
		log:          log,
		tickInterval: time.Second,
		phraseWait:   15 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks cfg with [Validate].
func (e *Engine) Validate(cfg domain.ExamConfig) error { return Validate(cfg) }

// Validate checks the form values before any countdown exists. Errors wrap
// the domain sentinels so the form can show a precise message. Missing
// files are reported before range errors, rules before the logo.
func Validate(cfg domain.ExamConfig) error {
	if cfg.RulesPath == "" {
		return domain.ErrMissingRules
	}
	if cfg.LogoPath == "" {
		return domain.ErrMissingLogo
	}
	if cfg.Hours < 0 || cfg.Hours > 23 || cfg.Minutes < 0 || cfg.Minutes > 59 {
		return fmt.Errorf("%w: got %dh %dm", domain.ErrInvalidDuration, cfg.Hours, cfg.Minutes)
	}
	if _, err := os.Stat(cfg.RulesPath); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMissingRules, err)
	}
	if err := checkLogo(cfg.LogoPath); err != nil {
		return err
	}
	return nil
}

func checkLogo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", domain.ErrMissingLogo, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidLogo, err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidLogo, err)
	}
	if format != "png" && format != "jpeg" {
		return fmt.Errorf("%w: got %s", domain.ErrInvalidLogo, format)
	}
	return nil
}

// Prepare validates cfg and builds an idle session. The countdown does not
// run until the session is started.
func (e *Engine) Prepare(ctx context.Context, cfg domain.ExamConfig) (*Session, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	now := time.Now()
	record := domain.Session{
		ID:         generateID(),
		Course:     cfg.Course,
		Instructor: cfg.Instructor,
		Duration:   cfg.Duration(),
		Remaining:  cfg.Duration(),
		Status:     domain.SessionPrepared,
		CreatedAt:  now,
	}

	cd := countdown.New(countdown.FromExam(cfg))
	s := &Session{
		ID:     record.ID,
		Config: cfg,
		engine: e,
		log:    e.log.Named("session " + shortID(record.ID)),
		record: record,
	}
	s.driver = countdown.NewDriver(cd, s.log,
		countdown.WithTickInterval(e.tickInterval),
		countdown.WithHandler(countdown.HandlerFunc(s.handleEvent)),
	)

	if err := e.store.Save(ctx, &record); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("prepared session %s for %q (%s, reminders=%t, leave=%t)",
		record.ID, cfg.Course, cfg.Duration(), cfg.RemindersEnabled, cfg.HalfTimeLeaveAllowed)
	return s, nil
}

// History returns past sessions, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]*domain.Session, error) {
	sessions, err := e.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}
