// lines.go centralises every spoken string. Edit this file to change the
// proctor's voice. Keep lines short and direct; the TTS engine handles
// inflection.

package speech

import (
	"fmt"
	"strings"
	"time"
)

// ── Instructions ─────────────────────────────────────────────────

func LineWelcome() string {
	return "Greetings all, wish you all luck at your exam, before starting the exam I need to remind you with our regulations!"
}

// LineCourse introduces the exam when a course name was given.
func LineCourse(course, instructor string) string {
	course = strings.TrimSpace(course)
	instructor = strings.TrimSpace(instructor)
	switch {
	case course == "" && instructor == "":
		return ""
	case instructor == "":
		return fmt.Sprintf("This is the %s exam.", course)
	case course == "":
		return fmt.Sprintf("Your exam is supervised by %s.", instructor)
	default:
		return fmt.Sprintf("This is the %s exam, supervised by %s.", course, instructor)
	}
}

func LineNoRules() string {
	return "No regulations were provided. Please follow your instructor's directions."
}

// LineRule is spoken for a single regulation. Numbered so students can
// follow along with a printed sheet.
func LineRule(n int, rule string) string {
	rule = strings.TrimSpace(rule)
	if !strings.HasSuffix(rule, ".") && !strings.HasSuffix(rule, "!") && !strings.HasSuffix(rule, "?") {
		rule += "."
	}
	return fmt.Sprintf("Rule %d. %s", n, rule)
}

func LineExamDuration(d time.Duration) string {
	return fmt.Sprintf("You have %s. The exam starts when the timer starts.", FormatDurationSpeech(d))
}

// ── Countdown ────────────────────────────────────────────────────

func LineStarted() string {
	return "The exam has started. Good luck."
}

func LinePaused() string {
	return "The timer is paused."
}

func LineResumed() string {
	return "The timer is running again."
}

// LineHalfway is the halfway reminder. The leave variant tells students
// they may hand in and go.
func LineHalfway(remaining time.Duration, leaveAllowed bool) string {
	if leaveAllowed {
		return fmt.Sprintf("Half of the exam time has passed. %s remaining. You may now hand in your paper and leave.", capitalize(FormatDurationSpeech(remaining)))
	}
	return fmt.Sprintf("Half of the exam time has passed. %s remaining.", capitalize(FormatDurationSpeech(remaining)))
}

func LineThreeQuarter(remaining time.Duration) string {
	return fmt.Sprintf("Less than a quarter of the exam time is left. %s remaining.", capitalize(FormatDurationSpeech(remaining)))
}

func LineTimeUp() string {
	return "Time is up. Please stop writing and put down your pens."
}

// ReminderLines returns the fixed strings spoken during a countdown so
// they can be prefetched into the TTS cache before the exam starts.
func ReminderLines() []string {
	return []string{LineStarted(), LinePaused(), LineResumed(), LineTimeUp()}
}

// ── Helpers ──────────────────────────────────────────────────────

// FormatDurationSpeech returns a human-friendly spoken duration.
func FormatDurationSpeech(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	var parts []string
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, plural(s, "second"))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " ") + " and " + parts[len(parts)-1]
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
