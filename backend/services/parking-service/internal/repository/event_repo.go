package repository

import (
	"context"
	"database/sql"
	"fmt"

	"parkinglot/backend/services/parking-service/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, ex execer, e *models.SessionEvent) error {
	const query = `
		INSERT INTO parking_session_events (event_id, session_id, car_reg_number, kind, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := ex.ExecContext(ctx, query,
		e.ID,
		e.SessionID,
		e.CarRegNumber,
		e.Kind,
		e.Amount,
		e.OccurredAt,
	); err != nil {
		return fmt.Errorf("append %s event: %w", e.Kind, err)
	}
	return nil
}

// EventRepository reads the append-only session event log.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository returns repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListBySession returns the events of one session in the order they happened.
func (r *EventRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.SessionEvent, error) {
	const query = `
		SELECT event_id, session_id, car_reg_number, kind, amount, occurred_at
		FROM parking_session_events
		WHERE session_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.SessionEvent
	for rows.Next() {
		var e models.SessionEvent
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.CarRegNumber,
			&e.Kind,
			&e.Amount,
			&e.OccurredAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
