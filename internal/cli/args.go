package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/univinfo/univload/pkg/univload"
)

// RequireInputPath validates that exactly one spreadsheet argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireInputPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <spreadsheet.xlsx>

Usage: %s

Example:
  %s ./university_list.xlsx -d univ_info: %w`, cmd.UseLine(), cmd.CommandPath(), univload.ErrUsage)
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d: %w", len(args), univload.ErrUsage)
	}
	return nil
}

// NoArgs rejects positional arguments with a usage error.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown argument %q for %q: %w", args[0], cmd.CommandPath(), univload.ErrUsage)
	}
	return nil
}
