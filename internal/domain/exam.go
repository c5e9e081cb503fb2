// Package domain defines the core types and interfaces for the exam proctor.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// DefaultRulesColumn is the spreadsheet header the rules are read from when
// the configuration leaves it empty.
const DefaultRulesColumn = "rules"

// ExamConfig is everything the setup form collects before a countdown
// exists.
type ExamConfig struct {
	Course     string
	Instructor string

	Hours   int // 0-23
	Minutes int // 0-59

	RulesPath   string
	RulesColumn string
	LogoPath    string

	RemindersEnabled     bool
	HalfTimeLeaveAllowed bool
}

// Duration returns the configured exam length.
func (c ExamConfig) Duration() time.Duration {
	return time.Duration(c.Hours)*time.Hour + time.Duration(c.Minutes)*time.Minute
}

// TotalSeconds returns the exam length in whole seconds.
func (c ExamConfig) TotalSeconds() int {
	return c.Hours*3600 + c.Minutes*60
}

// Column returns the rules column, falling back to DefaultRulesColumn.
func (c ExamConfig) Column() string {
	if c.RulesColumn == "" {
		return DefaultRulesColumn
	}
	return c.RulesColumn
}
