package app

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	libredis "parkinglot/backend/libs/redis"
	"parkinglot/backend/services/parking-service/internal/config"
	"parkinglot/backend/services/parking-service/internal/db"
	httpserver "parkinglot/backend/services/parking-service/internal/http"
	"parkinglot/backend/services/parking-service/internal/http/handlers"
	"parkinglot/backend/services/parking-service/internal/metrics"
	redisstore "parkinglot/backend/services/parking-service/internal/redis"
	"parkinglot/backend/services/parking-service/internal/repository"
	"parkinglot/backend/services/parking-service/internal/service"
	"parkinglot/backend/services/parking-service/internal/tariff"
	"parkinglot/backend/services/parking-service/internal/ws"
)

// App wires parking-service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	schedule := tariff.DefaultSchedule(loc)
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.RedisOptions())
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	hub := ws.NewHub(cfg.PingInterval(), cfg.WriteTimeout(), logger)
	m := metrics.New(prometheus.NewRegistry())

	svc := service.NewParkingService(service.Deps{
		Sessions: repository.NewSessionRepository(sqlDB),
		Events:   repository.NewEventRepository(sqlDB),
		Cache:    redisstore.NewStore(redisClient, cfg.ActiveSessionTTL()),
		Notifier: hub,
		Metrics:  m,
		Clock:    service.RealClock{},
	}, cfg.Lot.Capacity, schedule, logger)

	hub.SetSnapshot(func(ctx context.Context) (ws.Occupancy, error) {
		occupied, err := svc.Occupied(ctx)
		if err != nil {
			return ws.Occupancy{}, err
		}
		free, err := svc.FreeSpaces(ctx)
		if err != nil {
			return ws.Occupancy{}, err
		}
		return ws.Occupancy{FreeSpaces: free, Occupied: occupied, Capacity: svc.Capacity()}, nil
	})

	parkingHandler := handlers.NewParkingHandler(svc, logger)

	routes := httpserver.Routes{
		FreeSpaces:     handlers.NewFreeSpacesHandler(svc),
		EnterParking:   parkingHandler.HandleEnter,
		ExitParking:    parkingHandler.HandleExit,
		CheckCost:      handlers.NewCheckCostHandler(svc),
		ActiveSessions: handlers.NewActiveSessionsHandler(svc),
		SessionEvents:  handlers.NewSessionEventsHandler(svc),
		Occupancy:      hub.HandleWS,
		Metrics:        m.Handler(),
		Health:         handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	logger.Info("parking service configured",
		zap.Int("capacity", svc.Capacity()),
		zap.String("timezone", loc.String()),
		zap.String("day_band", schedule.Band.Start.String()+"-"+schedule.Band.End.String()),
	)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and the websocket keepalive loop.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.hub.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	return g.Wait()
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
