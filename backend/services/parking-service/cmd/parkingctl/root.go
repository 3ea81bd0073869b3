package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parkinglot/backend/libs/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "parkingctl",
	Short: "Operator tooling for the parking service",
	Long: `parkingctl prices stays against the lot tariff, applies the database schema
and seeds test vehicles through the same entry path the HTTP API uses.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	logger, err := logging.NewLogger("parkingctl")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
