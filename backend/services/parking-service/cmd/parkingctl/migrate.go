package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"parkinglot/backend/services/parking-service/internal/config"
	"parkinglot/backend/services/parking-service/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the parking schema to PARKING_POSTGRES_DSN",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		sqlDB, err := db.NewPostgres(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer sqlDB.Close()

		if err := db.Migrate(cmd.Context(), sqlDB); err != nil {
			return err
		}
		color.New(color.FgGreen, color.Bold).Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
