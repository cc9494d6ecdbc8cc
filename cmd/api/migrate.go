package main

import (
	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard-api/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := repository.NewDB(cfg.DB.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repository.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("database schema applied", "database", cfg.DB.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
