package chart

import (
	"image/color"
	"io"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// gonumRenderer draws with gonum.org/v1/plot.
type gonumRenderer struct {
	width, height int
}

var (
	historyBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastRed  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	intervalPink = color.RGBA{R: 255, G: 182, B: 193, A: 110}
	barTeal      = color.RGBA{R: 0, G: 128, B: 128, A: 255}
)

func (g *gonumRenderer) newPlot(title, xl, yl string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xl
	p.Y.Label.Text = yl
	p.Legend.Top = true
	return p
}

func (g *gonumRenderer) save(p *plot.Plot, w io.Writer) error {
	// vgimg renders PNG at 96 DPI
	wt, err := p.WriterTo(vg.Length(g.width)*vg.Inch/96, vg.Length(g.height)*vg.Inch/96, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func timeXYs(ts []time.Time, ys []float64) plotter.XYs {
	out := make(plotter.XYs, len(ts))
	for i := range ts {
		out[i].X = float64(ts[i].Unix())
		out[i].Y = ys[i]
	}
	return out
}

func (g *gonumRenderer) Line(c LineChart, w io.Writer) error {
	if err := validateLine(c); err != nil {
		return err
	}
	p := g.newPlot(c.Title, c.XLabel, c.YLabel)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())
	for i, s := range c.Series {
		l, err := plotter.NewLine(timeXYs(s.T, s.Y))
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(2)
		if s.Dashed {
			l.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(l)
		if s.Name != "" {
			p.Legend.Add(s.Name, l)
		}
	}
	return g.save(p, w)
}

func (g *gonumRenderer) Bar(c BarChart, w io.Writer) error {
	if err := validateBar(c); err != nil {
		return err
	}
	p := g.newPlot(c.Title, c.XLabel, c.YLabel)
	width := vg.Length(g.width) * vg.Inch / 96 / vg.Length(2*len(c.Values)+2)
	bars, err := plotter.NewBarChart(plotter.Values(c.Values), width)
	if err != nil {
		return err
	}
	bars.Color = barTeal
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(c.Labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	return g.save(p, w)
}

func (g *gonumRenderer) Scatter(c ScatterChart, w io.Writer) error {
	if len(c.Groups) == 0 {
		return ErrUnsupported
	}
	p := g.newPlot(c.Title, c.XLabel, c.YLabel)
	p.Add(plotter.NewGrid())
	for i, grp := range c.Groups {
		xys := make(plotter.XYs, len(grp.X))
		for j := range grp.X {
			xys[j].X = grp.X[j]
			xys[j].Y = grp.Y[j]
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(grp.Name, s)
	}
	return g.save(p, w)
}

func (g *gonumRenderer) Band(c BandChart, w io.Writer) error {
	if err := validateBand(c); err != nil {
		return err
	}
	p := g.newPlot(c.Title, c.XLabel, c.YLabel)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	ring := make(plotter.XYs, 0, 2*len(c.Upper))
	ring = append(ring, timeXYs(c.Forecast.T, c.Upper)...)
	lower := timeXYs(c.Forecast.T, c.Lower)
	for i := len(lower) - 1; i >= 0; i-- {
		ring = append(ring, lower[i])
	}
	band, err := plotter.NewPolygon(ring)
	if err != nil {
		return err
	}
	band.Color = intervalPink
	band.LineStyle.Width = 0
	p.Add(band)
	p.Legend.Add(c.BandName, band)

	hist, err := plotter.NewLine(timeXYs(c.History.T, c.History.Y))
	if err != nil {
		return err
	}
	hist.Color = historyBlue
	hist.Width = vg.Points(2)
	p.Add(hist)
	p.Legend.Add(c.History.Name, hist)

	fc, err := plotter.NewLine(timeXYs(c.Forecast.T, c.Forecast.Y))
	if err != nil {
		return err
	}
	fc.Color = forecastRed
	fc.Width = vg.Points(2)
	fc.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(fc)
	p.Legend.Add(c.Forecast.Name, fc)
	return g.save(p, w)
}
