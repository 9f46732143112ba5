// Package forecast fits an additive time-series model (piecewise linear trend
// plus yearly Fourier seasonality) and produces point forecasts with
// uncertainty intervals.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewPoints is returned when a series is too short to fit.
var ErrTooFewPoints = errors.New("forecast needs at least 2 observations")

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("model is not fitted")

const (
	yearDays = 365.25
	// assumed observation noise (scaled units) used to turn priors into ridge weights
	obsNoise = 0.05
	jitter   = 1e-8
)

// Model holds hyperparameters and, after Fit, the fitted coefficients.
type Model struct {
	Changepoints     int
	ChangepointRange float64
	ChangepointPrior float64
	YearlyOrder      int
	SeasonalityPrior float64
	IntervalWidth    float64

	start   time.Time
	tScale  float64
	yScale  float64
	cps     []float64
	order   int
	beta    []float64
	sigma   float64
	last    time.Time
	step    float64
	history Series
}

// New returns a model with the usual defaults: 25 changepoints in the first
// 80% of the history, yearly order 10, and 80% intervals.
func New() *Model {
	return &Model{
		Changepoints:     25,
		ChangepointRange: 0.8,
		ChangepointPrior: 0.05,
		YearlyOrder:      10,
		SeasonalityPrior: 10,
		IntervalWidth:    0.80,
	}
}

// Result is aligned with the timestamps passed to Predict.
type Result struct {
	T        []time.Time `json:"ds"`
	Forecast []float64   `json:"yhat"`
	Lower    []float64   `json:"yhat_lower"`
	Upper    []float64   `json:"yhat_upper"`
	Trend    []float64   `json:"trend"`
	Yearly   []float64   `json:"yearly"`
}

// Fit estimates trend and seasonality coefficients for s.
func (m *Model) Fit(s Series) error {
	if s.Len() < 2 {
		return ErrTooFewPoints
	}
	if err := s.validate(); err != nil {
		return err
	}
	n := s.Len()
	m.history = s
	m.start = s.DS[0]
	m.last = s.DS[n-1]
	m.tScale = m.last.Sub(m.start).Seconds()
	m.step = m.tScale / float64(n-1)

	m.yScale = floats.Max(absAll(s.Y))
	if m.yScale == 0 {
		m.yScale = 1
	}

	m.cps = m.placeChangepoints(s)
	m.order = 0
	if m.last.Sub(m.start) >= 2*365*24*time.Hour {
		m.order = m.YearlyOrder
	}
	// keep the design narrower than the history
	for m.order > 0 && 2+len(m.cps)+2*m.order >= n {
		m.order--
	}

	x := m.design(s.DS)
	_, p := x.Dims()
	y := mat.NewVecDense(n, nil)
	for i, v := range s.Y {
		y.SetVec(i, v/m.yScale)
	}

	var a mat.Dense
	a.Mul(x.T(), x)
	for j := 0; j < p; j++ {
		a.Set(j, j, a.At(j, j)+m.penalty(j)+jitter)
	}
	var b mat.VecDense
	b.MulVec(x.T(), y)
	var beta mat.VecDense
	if err := beta.SolveVec(&a, &b); err != nil {
		return fmt.Errorf("solve normal equations: %w", err)
	}
	m.beta = make([]float64, p)
	for j := range m.beta {
		m.beta[j] = beta.AtVec(j)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = (y.AtVec(i) - fitted.AtVec(i)) * m.yScale
	}
	m.sigma = 0
	if n > 2 {
		m.sigma = stat.StdDev(resid, nil)
	}
	return nil
}

// MakeFuture returns the history timestamps followed by periods new ones.
func (m *Model) MakeFuture(periods int, freq Frequency) []time.Time {
	out := append([]time.Time(nil), m.history.DS...)
	for i := 1; i <= periods; i++ {
		out = append(out, freq.step(m.last, i))
	}
	return out
}

// Predict evaluates the fitted model at ds.
func (m *Model) Predict(ds []time.Time) (*Result, error) {
	if m.beta == nil {
		return nil, ErrNotFitted
	}
	x := m.design(ds)
	width := m.IntervalWidth
	if width <= 0 || width >= 1 {
		width = 0.80
	}
	z := distuv.UnitNormal.Quantile(0.5 + width/2)

	res := &Result{
		T:        append([]time.Time(nil), ds...),
		Forecast: make([]float64, len(ds)),
		Lower:    make([]float64, len(ds)),
		Upper:    make([]float64, len(ds)),
		Trend:    make([]float64, len(ds)),
		Yearly:   make([]float64, len(ds)),
	}
	nTrend := 2 + len(m.cps)
	n := float64(m.history.Len())
	for i := range ds {
		var trend, yearly float64
		for j, b := range m.beta {
			v := x.At(i, j) * b
			if j < nTrend {
				trend += v
			} else {
				yearly += v
			}
		}
		trend *= m.yScale
		yearly *= m.yScale
		yhat := trend + yearly

		h := 0.0
		if ds[i].After(m.last) && m.step > 0 {
			h = ds[i].Sub(m.last).Seconds() / m.step
		}
		half := z * m.sigma * math.Sqrt(1+h/n)

		res.Trend[i] = trend
		res.Yearly[i] = yearly
		res.Forecast[i] = yhat
		res.Lower[i] = yhat - half
		res.Upper[i] = yhat + half
	}
	return res, nil
}

// Sigma is the residual standard deviation of the fit, in input units.
func (m *Model) Sigma() float64 { return m.sigma }

func (m *Model) placeChangepoints(s Series) []float64 {
	n := s.Len()
	rng := m.ChangepointRange
	if rng <= 0 || rng > 1 {
		rng = 0.8
	}
	histSize := int(math.Floor(float64(n) * rng))
	k := m.Changepoints
	if k > histSize-1 {
		k = histSize - 1
	}
	if k <= 0 {
		return nil
	}
	out := make([]float64, 0, k)
	for i := 1; i <= k; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(k)))
		out = append(out, m.scaleTime(s.DS[idx]))
	}
	return out
}

func (m *Model) scaleTime(t time.Time) float64 {
	if m.tScale == 0 {
		return 0
	}
	return t.Sub(m.start).Seconds() / m.tScale
}

// design builds [1, t, (t-c)+..., sin/cos(2πk·d/365.25)...].
func (m *Model) design(ds []time.Time) *mat.Dense {
	p := 2 + len(m.cps) + 2*m.order
	x := mat.NewDense(len(ds), p, nil)
	for i, d := range ds {
		t := m.scaleTime(d)
		x.Set(i, 0, 1)
		x.Set(i, 1, t)
		for j, c := range m.cps {
			if t > c {
				x.Set(i, 2+j, t-c)
			}
		}
		days := float64(d.Unix()) / 86400
		col := 2 + len(m.cps)
		for k := 1; k <= m.order; k++ {
			arg := 2 * math.Pi * float64(k) * days / yearDays
			x.Set(i, col, math.Sin(arg))
			x.Set(i, col+1, math.Cos(arg))
			col += 2
		}
	}
	return x
}

func (m *Model) penalty(j int) float64 {
	switch {
	case j < 2:
		return 0
	case j < 2+len(m.cps):
		return ratio(obsNoise, m.ChangepointPrior)
	default:
		return ratio(obsNoise, m.SeasonalityPrior)
	}
}

func ratio(noise, prior float64) float64 {
	if prior <= 0 {
		return 0
	}
	return (noise * noise) / (prior * prior)
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
