package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/univinfo/univload/internal/importer"
)

// Summary is what the import command reports when it finishes.
type Summary struct {
	RunID       string
	Source      string
	Checksum    string
	Target      string
	DryRun      bool
	Elapsed     time.Duration
	Result      *importer.Result
	MaxFailures int
}

// Render formats s. Plain output has no ANSI sequences and is stable for
// scripts and logs.
func (s Summary) Render(styled bool) string {
	r := s.Result
	title := "Import finished"
	if s.DryRun {
		title = "Dry run finished (nothing was written)"
	}

	rows := [][2]string{
		{"Run", s.RunID},
		{"Source", s.Source},
		{"SHA-256", s.Checksum},
		{"Target", s.Target},
		{"Rows read", fmt.Sprint(r.Total)},
		{"Rows inserted", fmt.Sprint(r.Inserted)},
		{"Rows failed", fmt.Sprint(r.Failed())},
		{"Corporations created", fmt.Sprint(r.CorporationsCreated)},
		{"Commits", fmt.Sprint(r.Commits)},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	}

	var b strings.Builder
	if styled {
		b.WriteString(TitleStyle.Render(title))
	} else {
		b.WriteString(title)
	}
	b.WriteString("\n")
	for _, kv := range rows {
		if kv[1] == "" {
			continue
		}
		if styled {
			value := kv[1]
			if kv[0] == "Rows failed" && r.Failed() > 0 {
				value = WarningStyle.Render(value)
			}
			b.WriteString(LabelStyle.Render(kv[0]) + value + "\n")
		} else {
			fmt.Fprintf(&b, "  %-22s%s\n", kv[0], kv[1])
		}
	}

	if failures := s.failureLines(styled); len(failures) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(failures, "\n"))
		b.WriteString("\n")
	}

	if !styled {
		return b.String()
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (s Summary) failureLines(styled bool) []string {
	failures := s.Result.Failures
	if len(failures) == 0 {
		return nil
	}
	limit := s.MaxFailures
	if limit <= 0 || limit > len(failures) {
		limit = len(failures)
	}

	lines := []string{"Failed rows:"}
	for _, f := range failures[:limit] {
		line := fmt.Sprintf("  %s row %d (line %d, code %q): %v",
			SymbolCross, f.Index, f.Line, f.Code, singleLine(f.Err.Error()))
		if styled {
			line = ErrorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if rest := len(failures) - limit; rest > 0 {
		more := fmt.Sprintf("  ... and %d more (see log)", rest)
		if styled {
			more = MutedStyle.Render(more)
		}
		lines = append(lines, more)
	}
	return lines
}

// singleLine collapses multi-error text onto one line.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
