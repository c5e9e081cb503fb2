package domain

import "time"

// Session is the history record of one exam sitting.
type Session struct {
	ID         string
	Course     string
	Instructor string
	Duration   time.Duration
	Remaining  time.Duration
	RulesRead  int
	Status     SessionStatus
	CreatedAt  time.Time
	StartedAt  time.Time // zero until the countdown first starts
	EndedAt    time.Time // zero while the session is open
}

// SessionStatus tracks the lifecycle of an exam session.
type SessionStatus int

const (
	SessionPrepared SessionStatus = iota
	SessionRunning
	SessionPaused
	SessionFinished
	SessionAborted
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionPrepared:
		return "prepared"
	case SessionRunning:
		return "running"
	case SessionPaused:
		return "paused"
	case SessionFinished:
		return "finished"
	case SessionAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ParseSessionStatus is the inverse of SessionStatus.String. Unknown names
// map to SessionAborted so a corrupt row never reads as still open.
func ParseSessionStatus(s string) SessionStatus {
	switch s {
	case "prepared":
		return SessionPrepared
	case "running":
		return SessionRunning
	case "paused":
		return SessionPaused
	case "finished":
		return SessionFinished
	default:
		return SessionAborted
	}
}

// Open reports whether the session can still change state.
func (s SessionStatus) Open() bool {
	return s == SessionPrepared || s == SessionRunning || s == SessionPaused
}
