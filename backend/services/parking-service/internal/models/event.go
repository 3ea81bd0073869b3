package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventKind names what happened to a session.
type EventKind string

const (
	EventEntered EventKind = "entered"
	EventExited  EventKind = "exited"
)

// SessionEvent is an append-only audit record. Rows are never updated or deleted.
type SessionEvent struct {
	ID           uuid.UUID           `db:"event_id" json:"event_id"`
	SessionID    int64               `db:"session_id" json:"session_id"`
	CarRegNumber string              `db:"car_reg_number" json:"car_reg_number"`
	Kind         EventKind           `db:"kind" json:"kind"`
	Amount       decimal.NullDecimal `db:"amount" json:"amount"`
	OccurredAt   time.Time           `db:"occurred_at" json:"occurred_at"`
}
