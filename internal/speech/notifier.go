package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// Speaker is the part of a Voice the notifier needs: routine messages are
// announced, urgent ones jump the queue.
type Speaker interface {
	domain.Announcer
	Say(text string, priority Priority)
}

// SpeakingNotifier wraps a text notifier and also speaks messages.
// Messages are shown immediately (via the inner notifier) and queued for speech.
type SpeakingNotifier struct {
	text  domain.Notifier
	mouth Speaker
	log   *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both shows and speaks.
func NewSpeakingNotifier(text domain.Notifier, mouth Speaker, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{
		text:  text,
		mouth: mouth,
		log:   log,
	}
}

// Notify shows the message and queues it for speech at normal priority.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	if cleaned := n.clean(message); cleaned != "" {
		if err := n.mouth.Announce(ctx, cleaned); err != nil {
			n.log.Warn("notifier: announce failed: %v", err)
		}
	}
	return nil
}

// NotifyUrgent shows the message and queues it for speech at high priority.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	if cleaned := n.clean(message); cleaned != "" {
		n.mouth.Say(cleaned, PriorityHigh)
	}
	return nil
}

func (n *SpeakingNotifier) clean(message string) string {
	cleaned := cleanForSpeech(message)
	if cleaned == "" {
		n.log.Debug("notifier: nothing to speak in %q", message)
	}
	return cleaned
}

// cleanForSpeech strips formatting artifacts that shouldn't be spoken.
var bracketPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
var ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func cleanForSpeech(msg string) string {
	cleaned := ansiCodes.ReplaceAllString(msg, "")
	cleaned = bracketPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	return cleaned
}
