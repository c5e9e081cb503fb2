package display

import (
	"context"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CaptionNotifier)(nil)

// Captioner shows a line of text to the room. *UI satisfies it.
type Captioner interface {
	Caption(text string, urgent bool)
}

// CaptionNotifier writes notifications to the countdown screen.
type CaptionNotifier struct {
	log *logger.Logger
	ui  Captioner
}

// NewCaptionNotifier creates a screen-caption notifier.
func NewCaptionNotifier(ui Captioner, log *logger.Logger) *CaptionNotifier {
	return &CaptionNotifier{log: log, ui: ui}
}

// Notify shows a normal caption.
func (n *CaptionNotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.ui.Caption(message, false)
	return nil
}

// NotifyUrgent shows a highlighted caption.
func (n *CaptionNotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.ui.Caption(message, true)
	return nil
}
