package chart

import (
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// goChartRenderer draws with github.com/wcharczuk/go-chart/v2.
type goChartRenderer struct {
	width, height int
}

var background = gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}}

// pointStyle renders points only (no connecting line).
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

// padSeries duplicates a lone point; go-chart needs two X values to build a range.
func padSeries(ts []time.Time, ys []float64) ([]time.Time, []float64) {
	if len(ts) == 1 {
		return []time.Time{ts[0], ts[0].Add(time.Second)}, []float64{ys[0], ys[0]}
	}
	return ts, ys
}

func (g *goChartRenderer) timeSeries(l Line, col drawing.Color) gochart.TimeSeries {
	ts, ys := padSeries(l.T, l.Y)
	st := gochart.Style{StrokeColor: col, StrokeWidth: 2}
	if l.Dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	return gochart.TimeSeries{Name: l.Name, XValues: ts, YValues: ys, Style: st}
}

func (g *goChartRenderer) render(ch *gochart.Chart, w io.Writer) error {
	ch.Width = g.width
	ch.Height = g.height
	ch.Background = background
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch.Render(gochart.PNG, w)
}

func (g *goChartRenderer) Line(c LineChart, w io.Writer) error {
	if err := validateLine(c); err != nil {
		return err
	}
	series := make([]gochart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		series = append(series, g.timeSeries(s, gochart.GetDefaultColor(i)))
	}
	ch := gochart.Chart{
		Title:  c.Title,
		XAxis:  gochart.XAxis{Name: c.XLabel, ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01")},
		YAxis:  gochart.YAxis{Name: c.YLabel},
		Series: series,
	}
	return g.render(&ch, w)
}

func (g *goChartRenderer) Bar(c BarChart, w io.Writer) error {
	if err := validateBar(c); err != nil {
		return err
	}
	bars := make([]gochart.Value, len(c.Values))
	for i := range c.Values {
		bars[i] = gochart.Value{Label: c.Labels[i], Value: c.Values[i],
			Style: gochart.Style{FillColor: drawing.Color{R: 0, G: 128, B: 128, A: 255}, StrokeColor: drawing.Color{R: 0, G: 96, B: 96, A: 255}}}
	}
	barWidth := g.width / (2*len(bars) + 2)
	if barWidth < 8 {
		barWidth = 8
	}
	bc := gochart.BarChart{
		Title:      c.Title,
		Width:      g.width,
		Height:     g.height,
		Background: background,
		BarWidth:   barWidth,
		YAxis:      gochart.YAxis{Name: c.YLabel},
		Bars:       bars,
	}
	return bc.Render(gochart.PNG, w)
}

func (g *goChartRenderer) Scatter(c ScatterChart, w io.Writer) error {
	if len(c.Groups) == 0 {
		return ErrUnsupported
	}
	series := make([]gochart.Series, 0, len(c.Groups))
	for i, grp := range c.Groups {
		xs, ys := grp.X, grp.Y
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0] + 1e-9}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, gochart.ContinuousSeries{Name: grp.Name, XValues: xs, YValues: ys, Style: pointStyle(gochart.GetDefaultColor(i))})
	}
	ch := gochart.Chart{
		Title:  c.Title,
		XAxis:  gochart.XAxis{Name: c.XLabel},
		YAxis:  gochart.YAxis{Name: c.YLabel},
		Series: series,
	}
	return g.render(&ch, w)
}

// Band draws the interval as two thin bound lines; go-chart has no fill-between.
func (g *goChartRenderer) Band(c BandChart, w io.Writer) error {
	if err := validateBand(c); err != nil {
		return err
	}
	pink := drawing.Color{R: 255, G: 105, B: 180, A: 200}
	lt, ly := padSeries(c.Forecast.T, c.Lower)
	ut, uy := padSeries(c.Forecast.T, c.Upper)
	bound := gochart.Style{StrokeColor: pink, StrokeWidth: 1, StrokeDashArray: []float64{2, 2}}
	ch := gochart.Chart{
		Title: c.Title,
		XAxis: gochart.XAxis{Name: c.XLabel, ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01")},
		YAxis: gochart.YAxis{Name: c.YLabel},
		Series: []gochart.Series{
			gochart.TimeSeries{Name: c.BandName, XValues: ut, YValues: uy, Style: bound},
			gochart.TimeSeries{XValues: lt, YValues: ly, Style: bound},
			g.timeSeries(c.History, drawing.Color{R: 31, G: 119, B: 180, A: 255}),
			g.timeSeries(Line{Name: c.Forecast.Name, T: c.Forecast.T, Y: c.Forecast.Y, Dashed: true}, drawing.Color{R: 214, G: 39, B: 40, A: 255}),
		},
	}
	return g.render(&ch, w)
}
