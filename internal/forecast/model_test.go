package forecast

import (
	"errors"
	"math"
	"testing"
	"time"
)

func monthly(n int, f func(i int, t time.Time) float64) Series {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{}
	for i := 0; i < n; i++ {
		t := start.AddDate(0, i, 0)
		s.DS = append(s.DS, t)
		s.Y = append(s.Y, f(i, t))
	}
	return s
}

func TestFitRecoversLinearTrend(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	line := func(t time.Time) float64 { return 40 + 0.02*t.Sub(start).Hours()/24 }
	s := monthly(20, func(_ int, t time.Time) float64 { return line(t) })

	m := New()
	if err := m.Fit(s); err != nil {
		t.Fatalf("fit: %v", err)
	}
	future := m.MakeFuture(6, MonthStart)
	res, err := m.Predict(future)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(res.Forecast) != 26 {
		t.Fatalf("forecast length = %d, want 26", len(res.Forecast))
	}
	for i, ts := range res.T {
		want := line(ts)
		if math.Abs(res.Forecast[i]-want) > 1e-3*want {
			t.Fatalf("yhat[%d] = %.5f, want %.5f", i, res.Forecast[i], want)
		}
	}
}

func TestMakeFutureUsesMonthStarts(t *testing.T) {
	s := monthly(12, func(i int, _ time.Time) float64 { return float64(10 + i) })
	m := New()
	if err := m.Fit(s); err != nil {
		t.Fatalf("fit: %v", err)
	}
	future := m.MakeFuture(6, MonthStart)
	if len(future) != 18 {
		t.Fatalf("len = %d, want 18", len(future))
	}
	for _, ts := range future[12:] {
		if ts.Day() != 1 {
			t.Fatalf("future date %v is not a month start", ts)
		}
	}
	if want := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC); !future[17].Equal(want) {
		t.Fatalf("last future = %v, want %v", future[17], want)
	}
}

func TestIntervalsContainForecastAndWiden(t *testing.T) {
	s := monthly(36, func(i int, ts time.Time) float64 {
		noise := 0.8
		if i%2 == 1 {
			noise = -0.8
		}
		if i%5 == 0 {
			noise *= 1.7
		}
		season := 3 * math.Sin(2*math.Pi*float64(ts.Month()-1)/12)
		return 50 + 0.4*float64(i) + season + noise
	})
	m := New()
	if err := m.Fit(s); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if m.Sigma() <= 0 {
		t.Fatalf("sigma = %v, want > 0", m.Sigma())
	}
	res, err := m.Predict(m.MakeFuture(6, MonthStart))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	prev := 0.0
	for i := range res.T {
		if !(res.Lower[i] <= res.Forecast[i] && res.Forecast[i] <= res.Upper[i]) {
			t.Fatalf("interval %d does not contain yhat: %v <= %v <= %v", i, res.Lower[i], res.Forecast[i], res.Upper[i])
		}
		if i >= s.Len() {
			w := res.Upper[i] - res.Lower[i]
			if w <= prev {
				t.Fatalf("interval width %v at %d did not grow past %v", w, i, prev)
			}
			prev = w
		}
	}
	for i := range res.T {
		if math.Abs(res.Trend[i]+res.Yearly[i]-res.Forecast[i]) > 1e-9 {
			t.Fatalf("components do not add up at %d", i)
		}
	}
}

func TestFitErrors(t *testing.T) {
	m := New()
	if err := m.Fit(Series{DS: []time.Time{time.Now()}, Y: []float64{1}}); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("err = %v, want ErrTooFewPoints", err)
	}
	if _, err := New().Predict([]time.Time{time.Now()}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("err = %v, want ErrNotFitted", err)
	}
	now := time.Now()
	bad := Series{DS: []time.Time{now, now}, Y: []float64{1, 2}}
	if err := m.Fit(bad); err == nil {
		t.Fatal("expected error for non-increasing timestamps")
	}
}

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]Frequency{"MS": MonthStart, "W": Week, "D": Day, "": MonthStart} {
		got, err := ParseFrequency(in)
		if err != nil || got != want {
			t.Fatalf("ParseFrequency(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFrequency("Q"); err == nil {
		t.Fatal("expected error for Q")
	}
}

func TestFrequencyUnit(t *testing.T) {
	cases := []struct {
		f    Frequency
		n    int
		want string
	}{
		{MonthStart, 6, "months"},
		{MonthStart, 1, "month"},
		{Week, 3, "weeks"},
		{Day, 1, "day"},
	}
	for _, c := range cases {
		if got := c.f.Unit(c.n); got != c.want {
			t.Errorf("Unit(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}
