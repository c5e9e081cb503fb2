package countdown

import "fmt"

// Kind identifies a countdown signal.
type Kind int

const (
	// TimeUpdated carries the new remaining time after a non-terminal tick.
	TimeUpdated Kind = iota
	// HalfwayReached fires once, the first time half the exam has elapsed.
	HalfwayReached
	// ThreeQuarterReached fires once, the first time less than a quarter remains.
	ThreeQuarterReached
	// ExpiryReached fires once when the remaining time reaches zero.
	ExpiryReached
	// RulesRead carries the rule list fetched before the exam. Empty when
	// the rules could not be read.
	RulesRead
	// Started fires when the countdown transitions to running.
	Started
	// Paused fires when a running countdown is paused.
	Paused
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case TimeUpdated:
		return "time_updated"
	case HalfwayReached:
		return "halfway_reached"
	case ThreeQuarterReached:
		return "three_quarter_reached"
	case ExpiryReached:
		return "expiry_reached"
	case RulesRead:
		return "rules_read"
	case Started:
		return "started"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Event is a signal emitted by the countdown. The presentation layer and
// the announcer subscribe to these instead of being called directly.
type Event struct {
	Kind      Kind
	Remaining int // seconds left when the event was produced
	Total     int

	// LeavePermitted selects the halfway wording. Only meaningful for
	// HalfwayReached.
	LeavePermitted bool

	// Rules is only set for RulesRead.
	Rules []string
}

func (e Event) String() string {
	switch e.Kind {
	case HalfwayReached:
		return fmt.Sprintf("%s(leave=%t, %d/%d)", e.Kind, e.LeavePermitted, e.Remaining, e.Total)
	case RulesRead:
		return fmt.Sprintf("%s(%d)", e.Kind, len(e.Rules))
	default:
		return fmt.Sprintf("%s(%d/%d)", e.Kind, e.Remaining, e.Total)
	}
}
