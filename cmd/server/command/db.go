package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/database"
	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions for the MySQL store. Use migrate on a
fresh database to create the tables and seed to add the default spots.`,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MySQL schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := mysqlConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cmd.Context(), cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default parking spots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := mysqlConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cmd.Context(), cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()
		n, err := repository.NewSpotRepo(db).Seed(cmd.Context(), database.DefaultSpots)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d spot(s)\n", n)
		return nil
	},
}

// mysqlConfig loads the configuration and insists on the MySQL store.
func mysqlConfig() (config.Config, error) {
	cfg := config.Load()
	log.Setup(cfg.Env)
	if cfg.StoreDriver != config.DriverMySQL {
		return cfg, fmt.Errorf("db commands need STORE_DRIVER=%s, got %q", config.DriverMySQL, cfg.StoreDriver)
	}
	return cfg, nil
}

func init() {
	dbCmd.AddCommand(migrateCmd, seedCmd)
	rootCmd.AddCommand(dbCmd)
}
