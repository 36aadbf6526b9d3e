package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/univinfo/univload/internal/tui"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the target database is reachable",
	Long: `Ping resolves the connection the same way import does, connects, and
reports the server version. Exits 11 when the database cannot be reached.

Examples:
  univload ping -h db.internal -U loader -d univ_info`,
	Args: NoArgs,
	RunE: runPing,
}

type pingFlagValues struct {
	conn    connectionFlags
	timeout time.Duration
}

var pingFlags pingFlagValues

func init() {
	rootCmd.AddCommand(pingCmd)

	registerConnectionFlags(pingCmd, &pingFlags.conn)
	pingCmd.Flags().DurationVar(&pingFlags.timeout, "timeout", 30*time.Second,
		"Give up after this long")
}

func runPing(cmd *cobra.Command, args []string) error {
	ce, resolved, timeout, err := prepareDatabaseCommand(cmd, pingFlags.conn, pingFlags.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(timeout, "ping")
	defer cancel()

	start := time.Now()
	pool, err := connectPostgres(ce.logger)(ctx, resolved.ConnConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	var serverVersion string
	if err := pool.QueryRow(ctx, "SHOW server_version").Scan(&serverVersion); err != nil {
		return fmt.Errorf("query server version: %w", err)
	}

	c := resolved.ConnConfig
	line := fmt.Sprintf("%s connected to %s:%d/%s as %s (PostgreSQL %s, %s)",
		tui.SymbolCheck, c.Host, c.Port, c.Database, c.Username, serverVersion,
		time.Since(start).Round(time.Millisecond))
	out := cmd.OutOrStdout()
	if tui.Styled(out) {
		line = tui.SuccessStyle.Render(line)
	}
	fmt.Fprintln(out, line)
	return nil
}
