package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/univinfo/univload/internal/services"
	"github.com/univinfo/univload/internal/tui"
	"github.com/univinfo/univload/pkg/univload"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Migrate creates or upgrades the registry schema (enum types, tbl_corporations,
tbl_university_info) in the target PostgreSQL database.

Migrations are embedded in the binary and tracked in goose_db_version.
Running migrate on an up-to-date database does nothing.

Examples:
  univload migrate -d univ_info
  univload migrate status --connection postgresql://loader@db.internal/univ_info`,
	Args: NoArgs,
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations have been applied",
	Args:  NoArgs,
	RunE:  runMigrateStatus,
}

type migrateFlagValues struct {
	conn    connectionFlags
	timeout time.Duration
}

var migrateFlags migrateFlagValues

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	registerConnectionFlags(migrateCmd, &migrateFlags.conn)
	registerConnectionFlags(migrateStatusCmd, &migrateFlags.conn)
	for _, c := range []*cobra.Command{migrateCmd, migrateStatusCmd} {
		c.Flags().DurationVar(&migrateFlags.timeout, "timeout", 2*time.Minute,
			"Catastrophic failure protection timeout")
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ce, resolved, timeout, err := prepareDatabaseCommand(cmd, migrateFlags.conn, migrateFlags.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(timeout, "migration")
	defer cancel()

	pool, err := connectPostgres(ce.logger)(ctx, resolved.ConnConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := services.ApplyMigrations(ctx, pool, ce.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styled := tui.Styled(out)
	if len(applied) == 0 {
		fmt.Fprintln(out, "Schema is up to date.")
		return nil
	}
	for _, a := range applied {
		line := fmt.Sprintf("%s %s (%s)", tui.SymbolCheck, a.Path, a.Duration.Round(time.Millisecond))
		if styled {
			line = tui.SuccessStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	ce, resolved, timeout, err := prepareDatabaseCommand(cmd, migrateFlags.conn, migrateFlags.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(timeout, "status check")
	defer cancel()

	pool, err := connectPostgres(ce.logger)(ctx, resolved.ConnConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := services.MigrationStatus(ctx, pool, ce.logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tMIGRATION\tAPPLIED AT")
	for _, s := range statuses {
		appliedAt := "pending"
		if s.Applied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Path, appliedAt)
	}
	return w.Flush()
}

// prepareDatabaseCommand loads the command environment and resolves the
// PostgreSQL connection and timeout shared by the database commands.
func prepareDatabaseCommand(cmd *cobra.Command, flags connectionFlags, flagTimeout time.Duration) (*commandEnv, *resolvedConnection, time.Duration, error) {
	ce, err := loadCommandEnv(cmd)
	if err != nil {
		return nil, nil, 0, err
	}
	resolved, err := resolveConnectionFromFlags(flags, ce)
	if err != nil {
		return nil, nil, 0, err
	}
	timeout, err := resolveEffectiveTimeout(cmd, ce, flagTimeout)
	if err != nil {
		return nil, nil, 0, err
	}
	if timeout <= 0 {
		return nil, nil, 0, fmt.Errorf("timeout must be positive, got %s: %w", timeout, univload.ErrInvalidConfig)
	}
	return ce, resolved, timeout, nil
}
