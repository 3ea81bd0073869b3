package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	libdb "parkinglot/backend/libs/db"
	"parkinglot/backend/services/parking-service/internal/models"
)

var (
	// ErrSessionNotFound indicates there is no active session for the vehicle.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLotFull indicates every space is taken.
	ErrLotFull = errors.New("parking lot is full")
	// ErrAlreadyParked indicates the vehicle already has an active session.
	ErrAlreadyParked = errors.New("vehicle already parked")
)

// enterLockKey serializes capacity checks for the single lot.
const enterLockKey int64 = 0x7061726b // "park"

const sessionColumns = `id, car_reg_number, status, entry_date, exit_date, amount_due, created_at, updated_at`

// SessionRepository handles persistence of parking sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(
		&s.ID,
		&s.CarRegNumber,
		&s.Status,
		&s.EntryDate,
		&s.ExitDate,
		&s.AmountDue,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Enter opens a session for the vehicle if the lot has room and the vehicle is
// not already inside. The capacity check and insert run under one transaction
// holding an advisory lock, so concurrent entries cannot overfill the lot.
func (r *SessionRepository) Enter(ctx context.Context, carRegNumber string, entryAt time.Time, capacity int) (*models.Session, error) {
	var session *models.Session
	err := libdb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, enterLockKey); err != nil {
			return fmt.Errorf("acquire lot lock: %w", err)
		}

		var active int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM parking_sessions WHERE status = 'active'`,
		).Scan(&active); err != nil {
			return fmt.Errorf("count active: %w", err)
		}
		if active >= capacity {
			return ErrLotFull
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM parking_sessions WHERE car_reg_number = $1 AND status = 'active')`,
			carRegNumber,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check active vehicle: %w", err)
		}
		if exists {
			return ErrAlreadyParked
		}

		const query = `
			INSERT INTO parking_sessions (car_reg_number, status, entry_date, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING ` + sessionColumns
		s, err := scanSession(tx.QueryRowContext(ctx, query, carRegNumber, models.SessionStatusActive, entryAt))
		if err != nil {
			return err
		}

		if err := insertEvent(ctx, tx, &models.SessionEvent{
			ID:           uuid.New(),
			SessionID:    s.ID,
			CarRegNumber: s.CarRegNumber,
			Kind:         models.EventEntered,
			OccurredAt:   entryAt,
		}); err != nil {
			return err
		}
		session = s
		return nil
	})
	if libdb.IsCode(err, libdb.CodeUniqueViolation) {
		return nil, ErrAlreadyParked
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// FindActive returns the active session for a registration number.
func (r *SessionRepository) FindActive(ctx context.Context, carRegNumber string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE car_reg_number = $1 AND status = 'active'`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, carRegNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// IsActive reports whether the session is still open.
func (r *SessionRepository) IsActive(ctx context.Context, sessionID int64) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parking_sessions WHERE id = $1 AND status = 'active')`,
		sessionID,
	).Scan(&active)
	if err != nil {
		return false, err
	}
	return active, nil
}

// Complete closes an active session, recording exit time and amount, and appends
// the exit to the event log. Completing a session twice yields ErrSessionNotFound.
func (r *SessionRepository) Complete(ctx context.Context, sessionID int64, exitAt time.Time, amount decimal.Decimal) (*models.Session, error) {
	var session *models.Session
	err := libdb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE parking_sessions
			SET exit_date = $2,
			    amount_due = $3,
			    status = $4,
			    updated_at = NOW()
			WHERE id = $1 AND status = 'active'
			RETURNING ` + sessionColumns
		s, err := scanSession(tx.QueryRowContext(ctx, query, sessionID, exitAt, amount, models.SessionStatusCompleted))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		if err := insertEvent(ctx, tx, &models.SessionEvent{
			ID:           uuid.New(),
			SessionID:    s.ID,
			CarRegNumber: s.CarRegNumber,
			Kind:         models.EventExited,
			Amount:       decimal.NewNullDecimal(amount),
			OccurredAt:   exitAt,
		}); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CountActive returns the number of vehicles currently parked.
func (r *SessionRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_sessions WHERE status = 'active'`,
	).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListActive returns currently active sessions, oldest first.
func (r *SessionRepository) ListActive(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE status = 'active'
		ORDER BY entry_date ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
