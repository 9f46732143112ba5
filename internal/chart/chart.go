// Package chart renders the pipelines' line, bar, scatter, and forecast band
// charts to PNG through a pluggable backend.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupported is returned for an unknown backend name or an empty chart.
var ErrUnsupported = errors.New("unsupported chart")

// Line is one named time series.
type Line struct {
	Name   string
	T      []time.Time
	Y      []float64
	Dashed bool
}

// LineChart overlays one or more time series.
type LineChart struct {
	Title, XLabel, YLabel string
	Series                []Line
}

// BarChart draws one bar per label.
type BarChart struct {
	Title, XLabel, YLabel string
	Labels                []string
	Values                []float64
}

// ScatterGroup is a set of points sharing a colour and legend entry.
type ScatterGroup struct {
	Name string
	X, Y []float64
}

// ScatterChart draws coloured point groups.
type ScatterChart struct {
	Title, XLabel, YLabel string
	Groups                []ScatterGroup
}

// BandChart draws a history line, a forecast line, and the forecast's
// lower/upper interval. Lower and Upper align with Forecast.T.
type BandChart struct {
	Title, XLabel, YLabel string
	History               Line
	Forecast              Line
	BandName              string
	Lower, Upper          []float64
}

// Renderer draws charts as PNG onto w.
type Renderer interface {
	Line(c LineChart, w io.Writer) error
	Bar(c BarChart, w io.Writer) error
	Scatter(c ScatterChart, w io.Writer) error
	Band(c BandChart, w io.Writer) error
}

// Backend names accepted by New.
const (
	BackendGonum   = "gonum"
	BackendGoChart = "gochart"
)

// New returns the named backend sized in pixels.
func New(backend string, width, height int) (Renderer, error) {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 600
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendGonum, "plot":
		return &gonumRenderer{width: width, height: height}, nil
	case BackendGoChart, "go-chart":
		return &goChartRenderer{width: width, height: height}, nil
	}
	return nil, fmt.Errorf("%w backend %q (use %s or %s)", ErrUnsupported, backend, BackendGonum, BackendGoChart)
}

// Job renders one chart into File (relative to the output directory).
type Job struct {
	File string
	Draw func(r Renderer, w io.Writer) error
}

// RenderAll runs jobs concurrently and returns the written paths in job order.
// The first failure cancels jobs that have not started yet.
func RenderAll(ctx context.Context, r Renderer, dir string, jobs []Job) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir charts: %w", err)
	}
	paths := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, job.File)
			if err := renderFile(r, path, job.Draw); err != nil {
				return fmt.Errorf("render %s: %w", job.File, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func renderFile(r Renderer, path string, draw func(Renderer, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(r, f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func validateLine(c LineChart) error {
	if len(c.Series) == 0 {
		return fmt.Errorf("%w: line chart %q has no series", ErrUnsupported, c.Title)
	}
	for _, s := range c.Series {
		if len(s.T) != len(s.Y) {
			return fmt.Errorf("series %q: %d timestamps, %d values", s.Name, len(s.T), len(s.Y))
		}
	}
	return nil
}

func validateBar(c BarChart) error {
	if len(c.Values) == 0 {
		return fmt.Errorf("%w: bar chart %q has no bars", ErrUnsupported, c.Title)
	}
	if len(c.Labels) != len(c.Values) {
		return fmt.Errorf("bar chart %q: %d labels, %d values", c.Title, len(c.Labels), len(c.Values))
	}
	return nil
}

func validateBand(c BandChart) error {
	if len(c.Forecast.T) != len(c.Lower) || len(c.Forecast.T) != len(c.Upper) {
		return fmt.Errorf("band chart %q: interval does not align with forecast", c.Title)
	}
	return validateLine(LineChart{Title: c.Title, Series: []Line{c.History, c.Forecast}})
}
