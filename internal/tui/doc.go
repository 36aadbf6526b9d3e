// Package tui renders the human-facing end-of-run summary, styled with
// lipgloss when stdout is a terminal and plain otherwise.
package tui
