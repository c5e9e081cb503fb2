package domain

import "context"

// RuleSource reads the academic rules that are narrated before the exam.
// Implementations return the non-empty cells of the named column, top to
// bottom.
type RuleSource interface {
	Read(ctx context.Context, path, column string) ([]string, error)
}

// SessionStore persists exam session history. Implementations can be
// in-memory or SQLite.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]*Session, error)
}

// Notifier delivers messages to the room. Implementations can print a
// caption, speak, or both.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Announcer renders one phrase audibly. Announce must not block for the
// whole playback; failures are reported but callers log and continue.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}
