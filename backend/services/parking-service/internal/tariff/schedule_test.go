package tariff

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestCostScenarios(t *testing.T) {
	s := DefaultSchedule(time.UTC)

	cases := []struct {
		name        string
		entry, exit time.Time
		want        float64
	}{
		{"daytime stay", at(0, 9, 0), at(0, 17, 0), 24},
		{"overnight stay", at(0, 20, 0), at(1, 9, 0), 27},
		{"two full days", at(0, 10, 0), at(2, 10, 0), 116},
		{"one day and two hours", at(0, 10, 0), at(1, 12, 0), 64},
		{"half hour each side of morning boundary", at(0, 7, 30), at(0, 8, 30), 2.5},
		{"nothing elapsed", at(0, 10, 0), at(0, 10, 0), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cost(tc.entry, tc.exit, s); !almostEqual(got, tc.want) {
				t.Fatalf("Cost() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCostWithoutFullDayRate(t *testing.T) {
	s := DefaultSchedule(time.UTC)
	s.FullDayRate = nil

	q := Price(at(0, 10, 0), at(2, 10, 0), s)
	if q.FullDays != 0 {
		t.Fatalf("expected full days folded, got %+v", q)
	}
	// 20 day hours at 3 plus 28 night hours at 2.
	if !almostEqual(q.Amount, 116) {
		t.Fatalf("Amount = %v, want 116", q.Amount)
	}

	s.DayRate = 4
	if got := Cost(at(0, 10, 0), at(1, 10, 0), s); !almostEqual(got, 10*4+14*2) {
		t.Fatalf("Cost() = %v, want 68", got)
	}
}

func TestCostMonotonic(t *testing.T) {
	for _, withFlat := range []bool{true, false} {
		s := DefaultSchedule(time.UTC)
		if !withFlat {
			s.FullDayRate = nil
		}
		entry := at(0, 13, 37)
		prev := 0.0
		for step := 0; step <= 4*24*4; step++ {
			exit := entry.Add(time.Duration(step) * 15 * time.Minute)
			got := Cost(entry, exit, s)
			if got+eps < prev {
				t.Fatalf("cost decreased at %s (flat=%v): %v < %v", exit, withFlat, got, prev)
			}
			prev = got
		}
	}
}

func TestPriceReportsBreakdown(t *testing.T) {
	q := Price(at(0, 20, 0), at(1, 9, 0), DefaultSchedule(time.UTC))
	if !almostEqual(q.DayHours, 1) || !almostEqual(q.NightHours, 12) || q.FullDays != 0 {
		t.Fatalf("unexpected breakdown %+v", q.Breakdown)
	}
}

func TestScheduleValidate(t *testing.T) {
	s := DefaultSchedule(nil)
	if err := s.Validate(); err != nil {
		t.Fatalf("default schedule invalid: %v", err)
	}

	neg := DefaultSchedule(nil)
	neg.NightRate = -1
	if err := neg.Validate(); err == nil {
		t.Fatalf("expected error for negative night rate")
	}

	flat := -5.0
	negFlat := DefaultSchedule(nil)
	negFlat.FullDayRate = &flat
	if err := negFlat.Validate(); err == nil {
		t.Fatalf("expected error for negative full day rate")
	}
}

// Full days are elapsed 24-hour periods, so a stay from 10:00 to 10:00 across a
// DST change bills the extra or missing hour in its band.
func TestCostAcrossDSTChange(t *testing.T) {
	sofia, err := time.LoadLocation("Europe/Sofia")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	s := DefaultSchedule(sofia)

	cases := []struct {
		name        string
		entry, exit time.Time
		elapsed     time.Duration
		want        Breakdown
		amount      float64
	}{
		{
			name:    "clocks go back",
			entry:   time.Date(2026, 10, 24, 10, 0, 0, 0, sofia),
			exit:    time.Date(2026, 10, 25, 10, 0, 0, 0, sofia),
			elapsed: 25 * time.Hour,
			want:    Breakdown{FullDays: 1, DayHours: 1},
			amount:  61,
		},
		{
			name:    "clocks go forward",
			entry:   time.Date(2026, 3, 28, 10, 0, 0, 0, sofia),
			exit:    time.Date(2026, 3, 29, 10, 0, 0, 0, sofia),
			elapsed: 23 * time.Hour,
			want:    Breakdown{DayHours: 10, NightHours: 13},
			amount:  56,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.exit.Sub(tc.entry); got != tc.elapsed {
				t.Fatalf("elapsed = %v, want %v", got, tc.elapsed)
			}
			q := Price(tc.entry, tc.exit, s)
			if q.FullDays != tc.want.FullDays ||
				!almostEqual(q.DayHours, tc.want.DayHours) ||
				!almostEqual(q.NightHours, tc.want.NightHours) {
				t.Fatalf("breakdown = %+v, want %+v", q.Breakdown, tc.want)
			}
			if !almostEqual(q.TotalHours(), tc.elapsed.Hours()) {
				t.Fatalf("TotalHours() = %v, want %v", q.TotalHours(), tc.elapsed.Hours())
			}
			if !almostEqual(q.Amount, tc.amount) {
				t.Fatalf("Amount = %v, want %v", q.Amount, tc.amount)
			}
		})
	}
}
