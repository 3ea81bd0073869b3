package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/metrics"
	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/repository"
	"parkinglot/backend/services/parking-service/internal/tariff"
)

// MaxRegNumberLength is the longest accepted registration number, in characters.
const MaxRegNumberLength = 10

// DefaultCapacity is the number of spaces in the lot.
const DefaultCapacity = 200

// Client-facing messages.
const (
	MsgInvalidData    = "Invalid data"
	MsgLotFull        = "The parking is full"
	MsgAlreadyParked  = "The car is already in the parking"
	MsgEntered        = "Car entered the parking successfully"
	MsgNotParked      = "The car is not in the parking"
	MsgExited         = "The car successfully exited the parking"
	MsgCostNotParked  = "Car not in the parking"
	MsgSomethingWrong = "Something went wrong, please try again."
)

var (
	// ErrInvalidRegNumber indicates a missing, blank or too long registration number.
	ErrInvalidRegNumber = errors.New("invalid car registration number")
	// ErrLotFull indicates every space is taken.
	ErrLotFull = repository.ErrLotFull
	// ErrAlreadyParked indicates the vehicle already has an active session.
	ErrAlreadyParked = repository.ErrAlreadyParked
	// ErrNotParked indicates the vehicle has no active session.
	ErrNotParked = repository.ErrSessionNotFound
)

// SessionStore persists parking sessions.
type SessionStore interface {
	Enter(ctx context.Context, carRegNumber string, entryAt time.Time, capacity int) (*models.Session, error)
	FindActive(ctx context.Context, carRegNumber string) (*models.Session, error)
	IsActive(ctx context.Context, sessionID int64) (bool, error)
	Complete(ctx context.Context, sessionID int64, exitAt time.Time, amount decimal.Decimal) (*models.Session, error)
	CountActive(ctx context.Context) (int, error)
	ListActive(ctx context.Context, limit int) ([]models.Session, error)
}

// EventLog reads the session audit trail.
type EventLog interface {
	ListBySession(ctx context.Context, sessionID int64) ([]models.SessionEvent, error)
}

// ActiveCache keeps active sessions close at hand. Get returns nil, nil on a miss.
type ActiveCache interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, carRegNumber string) (*models.Session, error)
	Delete(ctx context.Context, carRegNumber string) error
}

// OccupancyNotifier is told about every change in the number of parked vehicles.
type OccupancyNotifier interface {
	NotifyOccupancy(occupied, capacity int)
}

// Deps groups collaborators of ParkingService. Sessions is required.
type Deps struct {
	Sessions SessionStore
	Events   EventLog
	Cache    ActiveCache
	Notifier OccupancyNotifier
	Metrics  *metrics.Metrics
	Clock    Clock
}

// EnterResult is the outcome of an entry attempt.
type EnterResult struct {
	Message string
	Success bool
	Session *models.Session
}

// ExitResult is the outcome of an exit attempt.
type ExitResult struct {
	Message string
	Success bool
	Session *models.Session
}

// ParkingService ties the session store, cache and tariff together.
type ParkingService struct {
	sessions SessionStore
	events   EventLog
	cache    ActiveCache
	notifier OccupancyNotifier
	metrics  *metrics.Metrics
	clock    Clock
	schedule tariff.Schedule
	capacity int
	logger   *zap.Logger
}

// NewParkingService builds service.
func NewParkingService(deps Deps, capacity int, schedule tariff.Schedule, logger *zap.Logger) *ParkingService {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	clock := deps.Clock
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics != nil {
		deps.Metrics.CapacitySpaces.Set(float64(capacity))
	}
	return &ParkingService{
		sessions: deps.Sessions,
		events:   deps.Events,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		clock:    clock,
		schedule: schedule,
		capacity: capacity,
		logger:   logger.With(zap.String("component", "parking_service")),
	}
}

// NormalizeRegNumber trims the registration number and checks its length.
func NormalizeRegNumber(raw string) (string, error) {
	reg := strings.TrimSpace(raw)
	if reg == "" || utf8.RuneCountInString(reg) > MaxRegNumberLength {
		return "", ErrInvalidRegNumber
	}
	return reg, nil
}

// Capacity returns the number of spaces in the lot.
func (s *ParkingService) Capacity() int {
	return s.capacity
}

// Occupied returns the number of vehicles inside.
func (s *ParkingService) Occupied(ctx context.Context) (int, error) {
	n, err := s.sessions.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	if s.metrics != nil {
		s.metrics.OccupiedSpaces.Set(float64(n))
	}
	return n, nil
}

// FreeSpaces returns capacity minus parked vehicles, never below zero.
func (s *ParkingService) FreeSpaces(ctx context.Context) (int, error) {
	n, err := s.Occupied(ctx)
	if err != nil {
		return 0, err
	}
	return freeSpaces(s.capacity, n), nil
}

func freeSpaces(capacity, occupied int) int {
	if occupied >= capacity {
		return 0
	}
	return capacity - occupied
}

// Enter registers a vehicle. Domain refusals come back as ErrLotFull or
// ErrAlreadyParked together with the message for the client.
func (s *ParkingService) Enter(ctx context.Context, carRegNumber string) (*EnterResult, error) {
	reg, err := NormalizeRegNumber(carRegNumber)
	if err != nil {
		return &EnterResult{Message: MsgInvalidData}, err
	}
	log := s.logger.With(zap.String("operation", "enter"), zap.String("car_reg_number", reg))

	session, err := s.sessions.Enter(ctx, reg, s.clock.Now().UTC(), s.capacity)
	switch {
	case errors.Is(err, ErrLotFull):
		s.countEntry(metrics.ResultLotFull)
		log.Info("entry refused, lot full")
		return &EnterResult{Message: MsgLotFull}, ErrLotFull
	case errors.Is(err, ErrAlreadyParked):
		s.countEntry(metrics.ResultAlreadyParked)
		log.Info("entry refused, already parked")
		return &EnterResult{Message: MsgAlreadyParked}, ErrAlreadyParked
	case err != nil:
		s.countEntry(metrics.ResultError)
		log.Error("failed to register entry", zap.Error(err))
		return &EnterResult{Message: MsgSomethingWrong}, fmt.Errorf("enter parking: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, session); err != nil {
			log.Warn("failed to cache active session", zap.Error(err))
		}
	}
	s.countEntry(metrics.ResultEntered)
	log.Info("vehicle entered", zap.Int64("session_id", session.ID))
	s.publishOccupancy(ctx)

	return &EnterResult{Message: MsgEntered, Success: true, Session: session}, nil
}

// Exit charges the vehicle and closes its session.
func (s *ParkingService) Exit(ctx context.Context, carRegNumber string) (*ExitResult, error) {
	reg, err := NormalizeRegNumber(carRegNumber)
	if err != nil {
		return &ExitResult{Message: MsgInvalidData}, err
	}
	log := s.logger.With(zap.String("operation", "exit"), zap.String("car_reg_number", reg))

	session, err := s.sessions.FindActive(ctx, reg)
	if errors.Is(err, ErrNotParked) {
		return &ExitResult{Message: MsgNotParked}, ErrNotParked
	}
	if err != nil {
		log.Error("failed to load active session", zap.Error(err))
		return &ExitResult{Message: MsgSomethingWrong}, fmt.Errorf("find active session: %w", err)
	}

	exitAt := s.clock.Now().UTC()
	amount := s.amountDue(session.EntryDate, exitAt)

	done, err := s.sessions.Complete(ctx, session.ID, exitAt, amount)
	if errors.Is(err, ErrNotParked) {
		// Lost a race with another exit for the same vehicle.
		return &ExitResult{Message: MsgNotParked}, ErrNotParked
	}
	if err != nil {
		log.Error("failed to complete session", zap.Int64("session_id", session.ID), zap.Error(err))
		return &ExitResult{Message: MsgSomethingWrong}, fmt.Errorf("complete session: %w", err)
	}

	if s.cache != nil {
		s.evict(ctx, log, reg)
	}
	if s.metrics != nil {
		s.metrics.ExitsTotal.Inc()
		s.metrics.FeeAmount.Observe(amount.InexactFloat64())
		s.metrics.StayHours.Observe(exitAt.Sub(session.EntryDate).Hours())
	}
	log.Info("vehicle exited",
		zap.Int64("session_id", done.ID),
		zap.String("amount_due", amount.StringFixed(2)),
	)
	s.publishOccupancy(ctx)

	return &ExitResult{Message: MsgExited, Success: true, Session: done}, nil
}

// CheckCost returns what the vehicle would pay if it left now.
func (s *ParkingService) CheckCost(ctx context.Context, carRegNumber string) (decimal.Decimal, error) {
	reg, err := NormalizeRegNumber(carRegNumber)
	if err != nil {
		return decimal.Zero, err
	}

	session, err := s.activeSession(ctx, reg)
	if err != nil {
		return decimal.Zero, err
	}
	if s.metrics != nil {
		s.metrics.CostChecks.Inc()
	}
	return s.amountDue(session.EntryDate, s.clock.Now()), nil
}

// Quote prices an arbitrary stay with the lot's schedule.
func (s *ParkingService) Quote(entry, exit time.Time) tariff.Quote {
	return tariff.Price(entry, exit, s.schedule)
}

// ListActive returns parked vehicles, oldest first.
func (s *ParkingService) ListActive(ctx context.Context, limit int) ([]models.Session, error) {
	return s.sessions.ListActive(ctx, limit)
}

// SessionEvents returns the audit trail of one session.
func (s *ParkingService) SessionEvents(ctx context.Context, sessionID int64) ([]models.SessionEvent, error) {
	if s.events == nil {
		return nil, errors.New("event log not configured")
	}
	return s.events.ListBySession(ctx, sessionID)
}

// activeSession finds the vehicle's open session. A cached entry only saves
// the lookup by registration number; the store still confirms the session is
// open, and stale entries are evicted.
func (s *ParkingService) activeSession(ctx context.Context, reg string) (*models.Session, error) {
	log := s.logger.With(zap.String("operation", "check_cost"), zap.String("car_reg_number", reg))
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, reg)
		if err != nil {
			log.Warn("active session cache read failed", zap.Error(err))
		} else if cached != nil {
			active, err := s.sessions.IsActive(ctx, cached.ID)
			if err != nil {
				log.Error("failed to confirm cached session", zap.Int64("session_id", cached.ID), zap.Error(err))
				return nil, fmt.Errorf("confirm active session: %w", err)
			}
			if active {
				return cached, nil
			}
			s.evict(ctx, log, reg)
		}
	}

	session, err := s.sessions.FindActive(ctx, reg)
	if errors.Is(err, ErrNotParked) {
		return nil, ErrNotParked
	}
	if err != nil {
		log.Error("failed to load active session", zap.Error(err))
		return nil, fmt.Errorf("find active session: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, session); err != nil {
			log.Warn("failed to cache active session", zap.Error(err))
		}
	}
	return session, nil
}

func (s *ParkingService) evict(ctx context.Context, log *zap.Logger, reg string) {
	if err := s.cache.Delete(ctx, reg); err != nil {
		log.Warn("failed to evict active session", zap.Error(err))
	}
}

func (s *ParkingService) amountDue(entry, exit time.Time) decimal.Decimal {
	return decimal.NewFromFloat(tariff.Cost(entry, exit, s.schedule)).Round(2)
}

func (s *ParkingService) countEntry(result string) {
	if s.metrics != nil {
		s.metrics.EntriesTotal.WithLabelValues(result).Inc()
	}
}

func (s *ParkingService) publishOccupancy(ctx context.Context) {
	n, err := s.Occupied(ctx)
	if err != nil {
		s.logger.Warn("failed to refresh occupancy", zap.Error(err))
		return
	}
	if s.notifier != nil {
		s.notifier.NotifyOccupancy(n, s.capacity)
	}
}
