package tariff

import (
	"errors"
	"time"
)

const fullDay = 24 * time.Hour

// DayBand partitions the 24-hour clock into the day band [Start, End) and the
// night band covering the rest, wrapping past midnight. Clock times are read in
// Location (UTC when nil).
type DayBand struct {
	Start    ClockTime
	End      ClockTime
	Location *time.Location
}

// Validate reports whether the band is usable: Start must precede End.
func (b DayBand) Validate() error {
	if b.Start.Hour < 0 || b.Start.Hour > 23 || b.End.Hour < 0 || b.End.Hour > 23 ||
		b.Start.Minute < 0 || b.Start.Minute > 59 || b.End.Minute < 0 || b.End.Minute > 59 {
		return errors.New("tariff: clock time out of range")
	}
	if b.Start.Offset() >= b.End.Offset() {
		return errors.New("tariff: day band start must be before end")
	}
	return nil
}

func (b DayBand) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

// DayLength is the length of the day band in one 24-hour cycle.
func (b DayBand) DayLength() time.Duration {
	d := b.End.Offset() - b.Start.Offset()
	if d < 0 {
		return 0
	}
	return d
}

// Contains reports whether t's clock time falls inside the day band.
func (b DayBand) Contains(t time.Time) bool {
	t = t.In(b.location())
	return !t.Before(b.Start.On(t)) && t.Before(b.End.On(t))
}

// nextBoundary returns the first band boundary strictly after t.
func (b DayBand) nextBoundary(t time.Time) time.Time {
	t = t.In(b.location())
	tomorrow := t.AddDate(0, 0, 1)
	for _, candidate := range [...]time.Time{
		b.Start.On(t),
		b.End.On(t),
		b.Start.On(tomorrow),
		b.End.On(tomorrow),
	} {
		if candidate.After(t) {
			return candidate
		}
	}
	return t.Add(fullDay)
}

// Breakdown is the time spent in each band. FullDays is only non-zero when the
// split was asked to count whole 24-hour periods separately.
type Breakdown struct {
	DayHours   float64 `json:"day_hours"`
	NightHours float64 `json:"night_hours"`
	FullDays   int     `json:"full_days"`
}

// TotalHours is the elapsed time the breakdown accounts for.
func (b Breakdown) TotalHours() float64 {
	return b.DayHours + b.NightHours + float64(b.FullDays)*24
}

// Split attributes the interval [entry, exit) to the day and night bands.
//
// With countFullDays, every whole 24-hour period is reported in FullDays and only
// the remainder is banded. Without it, each whole period contributes one full
// band cycle to DayHours and NightHours. The remainder is walked boundary to
// boundary, so each segment lies entirely inside one band.
//
// A reversed or empty interval yields a zero Breakdown.
func Split(entry, exit time.Time, band DayBand, countFullDays bool) Breakdown {
	var out Breakdown
	if !exit.After(entry) {
		return out
	}

	cycles := int(exit.Sub(entry) / fullDay)
	if countFullDays {
		out.FullDays = cycles
	} else if cycles > 0 {
		dayLen := band.DayLength()
		out.DayHours = float64(cycles) * dayLen.Hours()
		out.NightHours = float64(cycles) * (fullDay - dayLen).Hours()
	}

	loc := band.location()
	cursor := entry.Add(time.Duration(cycles) * fullDay).In(loc)
	end := exit.In(loc)
	for cursor.Before(end) {
		next := band.nextBoundary(cursor)
		if next.After(end) {
			next = end
		}
		hours := next.Sub(cursor).Hours()
		if band.Contains(cursor) {
			out.DayHours += hours
		} else {
			out.NightHours += hours
		}
		cursor = next
	}
	return out
}
