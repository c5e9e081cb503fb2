package speech

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDurationSpeech(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{1 * time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{time.Minute, "1 minute"},
		{90 * time.Second, "1 minute and 30 seconds"},
		{time.Hour, "1 hour"},
		{90 * time.Minute, "1 hour and 30 minutes"},
		{2*time.Hour + 5*time.Minute + 3*time.Second, "2 hours 5 minutes and 3 seconds"},
		{-time.Second, "0 seconds"},
	}
	for _, tt := range tests {
		if got := FormatDurationSpeech(tt.d); got != tt.want {
			t.Errorf("FormatDurationSpeech(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLineHalfwayVariants(t *testing.T) {
	leave := LineHalfway(30*time.Minute, true)
	stay := LineHalfway(30*time.Minute, false)

	if !strings.Contains(leave, "leave") {
		t.Fatalf("leave variant should mention leaving: %q", leave)
	}
	if strings.Contains(stay, "leave") {
		t.Fatalf("time-only variant should not mention leaving: %q", stay)
	}
	if !strings.Contains(stay, "30 minutes remaining") {
		t.Fatalf("expected remaining time in %q", stay)
	}
}

func TestLineRulePunctuation(t *testing.T) {
	if got := LineRule(1, "No phones"); got != "Rule 1. No phones." {
		t.Fatalf("got %q", got)
	}
	if got := LineRule(2, " Stay seated! "); got != "Rule 2. Stay seated!" {
		t.Fatalf("got %q", got)
	}
}

func TestLineCourse(t *testing.T) {
	if got := LineCourse("", ""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := LineCourse("Algebra", "Dr. Noor"); got != "This is the Algebra exam, supervised by Dr. Noor." {
		t.Fatalf("got %q", got)
	}
}
