package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Styled reports whether output written to w should use colors and boxes.
//
// Returns false if:
//   - UNIVLOAD_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - w is not a terminal (redirected to a file or pipe)
func Styled(w io.Writer) bool {
	if os.Getenv("UNIVLOAD_PLAIN") == "1" || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
