package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/univinfo/univload/internal/registry"
	"github.com/univinfo/univload/internal/store/gormstore"
	"github.com/univinfo/univload/internal/store/pgstore"
	"github.com/univinfo/univload/pkg/univload"
)

var corporationsCmd = &cobra.Command{
	Use:   "corporations",
	Short: "List the corporations (법인) stored so far",
	Long: `Corporations prints every row of tbl_corporations ordered by name.

Examples:
  univload corporations -d univ_info
  univload corporations --driver sqlite --sqlite-path ./univ.db --json`,
	Args: NoArgs,
	RunE: runCorporations,
}

type corporationsFlagValues struct {
	conn       connectionFlags
	driver     string
	sqlitePath string
	json       bool
	timeout    time.Duration
}

var corporationsFlags corporationsFlagValues

func init() {
	rootCmd.AddCommand(corporationsCmd)

	registerConnectionFlags(corporationsCmd, &corporationsFlags.conn)
	corporationsCmd.Flags().StringVar(&corporationsFlags.driver, "driver", "",
		"Database backend: postgres|sqlite (default: postgres, or $UNIVLOAD_DRIVER)")
	corporationsCmd.Flags().StringVar(&corporationsFlags.sqlitePath, "sqlite-path", "",
		"SQLite database file for --driver sqlite (default: "+DefaultSQLitePath+", or $UNIVLOAD_SQLITE_PATH)")
	corporationsCmd.Flags().BoolVar(&corporationsFlags.json, "json", false,
		"Print a JSON array instead of a table")
	corporationsCmd.Flags().DurationVar(&corporationsFlags.timeout, "timeout", 30*time.Second,
		"Give up after this long")
}

func runCorporations(cmd *cobra.Command, args []string) error {
	ce, err := loadCommandEnv(cmd)
	if err != nil {
		return err
	}
	fileImport := ce.projectImport()

	driver, err := univload.ParseDriver(firstSet(corporationsFlags.driver, ce.env.Driver, fileImport.Driver))
	if err != nil {
		return err
	}
	timeout, err := resolveEffectiveTimeout(cmd, ce, corporationsFlags.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(timeout, "listing")
	defer cancel()

	var corps []registry.Corporation
	switch driver {
	case univload.DriverSQLite:
		path := firstSet(corporationsFlags.sqlitePath, ce.env.SQLitePath, fileImport.SQLitePath, DefaultSQLitePath)
		gdb, err := gormstore.Open(path)
		if err != nil {
			return err
		}
		defer gormstore.Close(gdb)
		if corps, err = gormstore.ListCorporations(ctx, gdb); err != nil {
			return err
		}

	default:
		resolved, err := resolveConnectionFromFlags(corporationsFlags.conn, ce)
		if err != nil {
			return err
		}
		pool, err := connectPostgres(ce.logger)(ctx, resolved.ConnConfig)
		if err != nil {
			return err
		}
		defer pool.Close()
		if corps, err = pgstore.ListCorporations(ctx, pool); err != nil {
			return err
		}
	}

	if corporationsFlags.json {
		return writeCorporationsJSON(cmd.OutOrStdout(), corps)
	}
	return writeCorporationsTable(cmd.OutOrStdout(), corps)
}

func writeCorporationsJSON(w io.Writer, corps []registry.Corporation) error {
	if corps == nil {
		corps = []registry.Corporation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(corps)
}

func writeCorporationsTable(w io.Writer, corps []registry.Corporation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range corps {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	fmt.Fprintf(tw, "\n%d corporation(s)\n", len(corps))
	return tw.Flush()
}
