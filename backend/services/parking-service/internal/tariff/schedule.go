package tariff

import (
	"errors"
	"time"
)

// Lot rates.
const (
	DefaultDayRate     = 3.0
	DefaultNightRate   = 2.0
	DefaultFullDayRate = 58.0
)

var (
	defaultDayStart = ClockTime{Hour: 8}
	defaultDayEnd   = ClockTime{Hour: 18}
)

// Schedule holds hourly rates per band and an optional flat rate for each whole
// 24-hour period. A nil FullDayRate folds whole days into the hourly bands.
type Schedule struct {
	Band        DayBand
	DayRate     float64
	NightRate   float64
	FullDayRate *float64
}

// DefaultSchedule is the lot's schedule with bands read in loc.
func DefaultSchedule(loc *time.Location) Schedule {
	fullDayRate := DefaultFullDayRate
	return Schedule{
		Band: DayBand{
			Start:    defaultDayStart,
			End:      defaultDayEnd,
			Location: loc,
		},
		DayRate:     DefaultDayRate,
		NightRate:   DefaultNightRate,
		FullDayRate: &fullDayRate,
	}
}

// Validate checks band order and that no rate is negative.
func (s Schedule) Validate() error {
	if err := s.Band.Validate(); err != nil {
		return err
	}
	if s.DayRate < 0 || s.NightRate < 0 {
		return errors.New("tariff: hourly rates must not be negative")
	}
	if s.FullDayRate != nil && *s.FullDayRate < 0 {
		return errors.New("tariff: full day rate must not be negative")
	}
	return nil
}

// Quote is a fee together with the band split it was priced from.
type Quote struct {
	Breakdown
	Amount float64 `json:"amount"`
}

// Price computes the fee for [entry, now) under s. The amount is not rounded.
func Price(entry, now time.Time, s Schedule) Quote {
	b := Split(entry, now, s.Band, s.FullDayRate != nil)
	amount := b.DayHours*s.DayRate + b.NightHours*s.NightRate
	if s.FullDayRate != nil {
		amount += float64(b.FullDays) * *s.FullDayRate
	}
	return Quote{Breakdown: b, Amount: amount}
}

// Cost is the unrounded fee for a stay from entry until now.
func Cost(entry, now time.Time, s Schedule) float64 {
	return Price(entry, now, s).Amount
}
