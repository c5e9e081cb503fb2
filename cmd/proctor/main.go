// Proctor is a spoken exam countdown for the terminal.
//
// Usage:
//
//	proctor [flags]              setup form, then the countdown
//	proctor rules <file>         print the rules a spreadsheet holds
//	proctor say <text>           speak a line through the configured voice
//	proctor history              list past exam sessions
//
// Exit status is 0 when the exam ran to the end, 2 when it was left early
// and 1 on error.
package main

import (
	"fmt"
	"os"
)

// Exit codes.
const (
	exitFinished = 0
	exitError    = 1
	exitAborted  = 2
)

func main() {
	a := &app{exitCode: exitFinished}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		a.close()
		os.Exit(exitError)
	}
	a.close()
	os.Exit(a.exitCode)
}
