package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

// SessionStatus is the lifecycle state of a parking session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session represents one vehicle's stay in the lot. ExitDate and AmountDue stay
// null while the vehicle is inside.
type Session struct {
	ID           int64               `db:"id" json:"id"`
	CarRegNumber string              `db:"car_reg_number" json:"car_reg_number"`
	Status       SessionStatus       `db:"status" json:"status"`
	EntryDate    time.Time           `db:"entry_date" json:"entry_date"`
	ExitDate     null.Time           `db:"exit_date" json:"exit_date"`
	AmountDue    decimal.NullDecimal `db:"amount_due" json:"amount_due"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// Active reports whether the vehicle is still parked.
func (s *Session) Active() bool {
	return s.Status == SessionStatusActive
}
