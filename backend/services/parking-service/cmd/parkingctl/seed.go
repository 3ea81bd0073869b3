package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	libredis "parkinglot/backend/libs/redis"
	"parkinglot/backend/services/parking-service/internal/config"
	"parkinglot/backend/services/parking-service/internal/db"
	redisstore "parkinglot/backend/services/parking-service/internal/redis"
	"parkinglot/backend/services/parking-service/internal/repository"
	"parkinglot/backend/services/parking-service/internal/service"
	"parkinglot/backend/services/parking-service/internal/tariff"
)

const regAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	seedCount      int
	seedEnteredAgo time.Duration
	seedNoCache    bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Park random vehicles through the regular entry path",
	Example: `  parkingctl seed --count 50
  parkingctl seed --count 10 --entered-ago 26h`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 10, "Number of vehicles to park")
	seedCmd.Flags().DurationVar(&seedEnteredAgo, "entered-ago", 0, "Backdate entry times by this much")
	seedCmd.Flags().BoolVar(&seedNoCache, "no-cache", false, "Do not write entered vehicles to redis")
	rootCmd.AddCommand(seedCmd)
}

// entrant is the part of the parking service the seeder drives.
type entrant interface {
	Enter(ctx context.Context, carRegNumber string) (*service.EnterResult, error)
}

type seedReport struct {
	Entered   int
	Duplicate int
	LotFull   bool
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount <= 0 {
		return fmt.Errorf("--count must be positive")
	}
	ctx := cmd.Context()
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sqlDB.Close()

	deps := service.Deps{
		Sessions: repository.NewSessionRepository(sqlDB),
		Events:   repository.NewEventRepository(sqlDB),
		Clock:    service.RealClock{},
	}
	if seedEnteredAgo > 0 {
		deps.Clock = &service.FixedClock{CurrentTime: time.Now().Add(-seedEnteredAgo)}
	}
	if !seedNoCache {
		client, err := libredis.NewRedisClient(cfg.RedisOptions())
		if err != nil {
			logger.Warn("redis unavailable, seeding without cache", zap.Error(err))
		} else {
			defer client.Close()
			deps.Cache = redisstore.NewStore(client, cfg.ActiveSessionTTL())
		}
	}

	svc := service.NewParkingService(deps, cfg.Lot.Capacity, tariff.DefaultSchedule(loc), logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	report, err := seed(ctx, svc, seedCount, func() string { return randomRegNumber(rng) })
	printSeedReport(cmd.OutOrStdout(), report, seedCount)
	return err
}

// seed parks up to count vehicles and stops early once the lot is full.
func seed(ctx context.Context, svc entrant, count int, nextReg func() string) (seedReport, error) {
	var report seedReport
	for i := 0; i < count; i++ {
		_, err := svc.Enter(ctx, nextReg())
		switch {
		case err == nil:
			report.Entered++
		case errors.Is(err, service.ErrAlreadyParked):
			report.Duplicate++
		case errors.Is(err, service.ErrLotFull):
			report.LotFull = true
			return report, nil
		default:
			return report, err
		}
	}
	return report, nil
}

func randomRegNumber(rng *rand.Rand) string {
	b := make([]byte, service.MaxRegNumberLength)
	for i := range b {
		b[i] = regAlphabet[rng.Intn(len(regAlphabet))]
	}
	return string(b)
}

func printSeedReport(w io.Writer, r seedReport, requested int) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	green.Fprintf(w, "parked %d of %d vehicles\n", r.Entered, requested)
	if r.Duplicate > 0 {
		yellow.Fprintf(w, "skipped %d duplicate registrations\n", r.Duplicate)
	}
	if r.LotFull {
		yellow.Fprintln(w, "stopped early: the parking is full")
	}
}
