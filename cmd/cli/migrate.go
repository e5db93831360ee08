package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
	"github.com/axellelanca/urlregistry/internal/repository"
)

// MigrateCmd represents the 'migrate' command.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured SQLite database and runs GORM
automatic migrations for the 'short_urls' and 'clicks' tables.`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		db, err := repository.OpenSQLite(cmd.Cfg.Database.Name)
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying SQL database: %w", err)
		}
		defer sqlDB.Close()

		if err := repository.Migrate(db); err != nil {
			return err
		}

		fmt.Fprintln(c.OutOrStdout(), "Database migrations executed successfully.")
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
