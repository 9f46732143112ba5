package forecast

import (
	"fmt"
	"time"
)

// Series is a univariate history: DS[i] is the timestamp of Y[i].
type Series struct {
	DS []time.Time
	Y  []float64
}

// Len reports the number of observations.
func (s Series) Len() int { return len(s.Y) }

func (s Series) validate() error {
	if len(s.DS) != len(s.Y) {
		return fmt.Errorf("series length mismatch: %d timestamps, %d values", len(s.DS), len(s.Y))
	}
	for i := 1; i < len(s.DS); i++ {
		if !s.DS[i].After(s.DS[i-1]) {
			return fmt.Errorf("series timestamps must be strictly increasing (index %d)", i)
		}
	}
	return nil
}

// Frequency is the spacing of generated future timestamps.
type Frequency int

const (
	MonthStart Frequency = iota
	Week
	Day
)

// ParseFrequency accepts the pandas-style aliases MS, W, and D.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "MS", "ms", "month", "":
		return MonthStart, nil
	case "W", "w", "week":
		return Week, nil
	case "D", "d", "day":
		return Day, nil
	}
	return 0, fmt.Errorf("unsupported frequency %q (use MS, W, or D)", s)
}

// Unit names n periods of f, e.g. "1 month" uses "month" and 6 uses "months".
func (f Frequency) Unit(n int) string {
	u := "month"
	switch f {
	case Week:
		u = "week"
	case Day:
		u = "day"
	}
	if n != 1 {
		u += "s"
	}
	return u
}

func (f Frequency) step(t time.Time, n int) time.Time {
	switch f {
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Day:
		return t.AddDate(0, 0, n)
	default:
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return first.AddDate(0, n, 0)
	}
}
