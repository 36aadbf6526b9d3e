package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/univinfo/univload/pkg/univload"
)

var rootCmd = &cobra.Command{
	Use:   "univload",
	Short: "Load the Korean university registry spreadsheet into a database",
	Long: `univload reads the university registry workbook (학교구분, 학교코드, 학교명, ...)
and loads every row into PostgreSQL or a local SQLite file.

Rows are loaded one by one: a row that fails validation or violates a
constraint is reported and skipped, the rest still load. Progress is
committed every --batch-size rows.

Exit Codes:
  0  - Success (also when some rows failed; see the summary)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Spreadsheet is missing a required column
  13 - Input spreadsheet not found
  14 - Schema migration failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for univload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", "",
		"Path to the project config file (default: ./univload.yaml when present)")
	rootCmd.PersistentFlags().String("log-format", "",
		"Log format: text|json (default: text, or $UNIVLOAD_LOG_FORMAT)")
	rootCmd.PersistentFlags().String("log-level", "",
		"Log level: debug|info|warn|error (default: info, or $UNIVLOAD_LOG_LEVEL)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\nRun '%s --help' for usage: %w", err, cmd.CommandPath(), univload.ErrUsage)
	})
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// getStringFlag returns a (possibly inherited) string flag, or "" if unknown.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}
