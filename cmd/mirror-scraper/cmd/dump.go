package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mirror-scraper/internal/console"
	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/storage/sqldb"
)

var (
	dumpDB     string
	dumpTable  string
	dumpDriver string
)

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVar(&dumpDB, "db", "", "SQLite file or DSN written by the sql output type")
	dumpCmd.Flags().StringVar(&dumpTable, "table", "", "table name (defaults to storage.table)")
	dumpCmd.Flags().StringVar(&dumpDriver, "driver", "", "storage driver (defaults to storage.driver)")
	_ = dumpCmd.MarkFlagRequired("db")
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Prints the rows stored by a previous sql export.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if dumpTable != "" {
			cfg.Storage.Table = dumpTable
		}
		if dumpDriver != "" {
			cfg.Storage.Driver = dumpDriver
		}

		logger := observability.NewLogger(cfg.Observability)
		defer func() { _ = logger.Close() }()

		repo, err := sqldb.Open(cmd.Context(), sqldb.Options{
			Driver:         cfg.Storage.Driver,
			DSN:            dumpDB,
			Table:          cfg.Storage.Table,
			Columns:        cfg.Schema.Columns,
			CommandTimeout: cfg.GetCommandTimeout(),
		}, logger)
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		count, err := repo.CountRows(cmd.Context())
		if err != nil {
			return err
		}
		if count == 0 {
			fmt.Printf("Table %s is empty.\n", cfg.Storage.Table)
			return nil
		}

		rows, err := repo.ReadRows(cmd.Context())
		if err != nil {
			return err
		}

		console.RenderTable(os.Stdout, cfg.Schema.Columns, rows, 0)
		fmt.Printf("%d rows\n", len(rows))
		return nil
	},
}
