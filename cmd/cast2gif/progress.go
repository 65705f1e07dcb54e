package main

import (
	"fmt"
	"os"
)

// progressFunc receives progress updates while frames render. A nil
// progressFunc disables reporting.
type progressFunc func(done, total int)

// stderrProgress returns a reporter that redraws one status line on
// stderr, finishing it with a newline, or nil when quiet.
func stderrProgress(quiet bool, label string) progressFunc {
	if quiet {
		return nil
	}
	return func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r%s %d/%d", label, done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
