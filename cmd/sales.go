package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/retailpulse-cli/internal/chart"
	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
	"github.com/KaramelBytes/retailpulse-cli/internal/export"
	"github.com/KaramelBytes/retailpulse-cli/internal/forecast"
	"github.com/KaramelBytes/retailpulse-cli/internal/insight"
	"github.com/KaramelBytes/retailpulse-cli/internal/run"
	"github.com/KaramelBytes/retailpulse-cli/internal/sales"
	"github.com/spf13/cobra"
)

var (
	salesOutlet   string
	salesPeriods  int
	salesTop      int
	salesFreq     string
	salesXLSX     bool
	salesNoCharts bool
)

var salesCmd = &cobra.Command{
	Use:   "sales <file>",
	Short: "Chart outlet sales and forecast one outlet",
	Long: `Reads a table with Month, Outlet and Sales_Lakhs columns, charts the monthly
total across all outlets and the top outlets, then forecasts one outlet with an
additive trend + yearly seasonality model and an uncertainty interval.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := config()
		if cmd.Flags().Changed("outlet") {
			c.SalesOutlet = salesOutlet
		}
		if cmd.Flags().Changed("periods") {
			c.SalesPeriods = salesPeriods
		}
		if cmd.Flags().Changed("top") {
			c.SalesTopN = salesTop
		}
		if c.SalesPeriods < 1 {
			return fmt.Errorf("--periods must be at least 1")
		}
		freq, err := forecast.ParseFrequency(salesFreq)
		if err != nil {
			return err
		}

		opt, err := datasetOptions()
		if err != nil {
			return err
		}
		records, err := dataset.LoadSales(path, opt)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no sales rows in %s", path)
		}
		fmt.Printf("✓ Loaded %d sales records from %s\n", len(records), path)

		monthly := sales.MonthlyTotals(records)
		top := sales.TopOutlets(records, c.SalesTopN)
		rows := sales.SelectOutlets(records, top)
		log.Infof("top %d outlets cover %d of %d rows", len(top), rows.GetCardinality(), len(records))
		topSeries := sales.SeriesByOutlet(sales.Subset(records, rows), top)

		history, err := sales.OutletSeries(records, c.SalesOutlet)
		if err != nil {
			return err
		}
		model := forecast.New()
		model.IntervalWidth = c.ForecastIntervalWidth
		model.Changepoints = c.ForecastChangepoints
		model.ChangepointPrior = c.ForecastChangepointPrior
		model.YearlyOrder = c.ForecastYearlyOrder
		if err := model.Fit(history); err != nil {
			return fmt.Errorf("fit forecast for %s: %w", c.SalesOutlet, err)
		}
		res, err := model.Predict(model.MakeFuture(c.SalesPeriods, freq))
		if err != nil {
			return fmt.Errorf("predict %s: %w", c.SalesOutlet, err)
		}
		log.Debugf("forecast residual sigma=%.4f", model.Sigma())

		r, err := run.New(c.OutputDir, run.KindSales, path, time.Now())
		if err != nil {
			return err
		}
		r.SetParam("outlet", c.SalesOutlet)
		r.SetParam("periods", strconv.Itoa(c.SalesPeriods))
		r.SetParam("top", strconv.Itoa(c.SalesTopN))
		r.SetParam("interval_width", strconv.FormatFloat(model.IntervalWidth, 'f', -1, 64))

		unit := freq.Unit(c.SalesPeriods)
		var charts []string
		if !salesNoCharts {
			charts, err = renderCharts(cmd.Context(), r, salesChartJobs(monthly, topSeries, c.SalesOutlet, c.SalesPeriods, unit, history, res, model.IntervalWidth))
			if err != nil {
				return err
			}
		}
		if salesXLSX {
			if err := writeWorkbook(r, "sales.xlsx",
				export.MonthlySheet(monthly),
				export.TopOutletsSheet(top),
				export.ForecastSheet(history, res),
			); err != nil {
				return err
			}
		}

		printForecast(c.SalesOutlet, c.SalesPeriods, unit, res)
		fmt.Println("\n📊 Easy Insights:")
		for _, line := range insight.SalesInsights(c.SalesOutlet, len(top), c.SalesPeriods, unit) {
			fmt.Println(line)
		}
		fmt.Println()
		return finishRun(r, insight.SalesReport(insight.SalesSummary{
			Input:         path,
			Records:       len(records),
			Months:        monthly,
			Top:           top,
			Outlet:        c.SalesOutlet,
			Periods:       c.SalesPeriods,
			Unit:          unit,
			History:       history,
			Forecast:      res,
			IntervalWidth: model.IntervalWidth,
			Charts:        charts,
		}))
	},
}

func init() {
	rootCmd.AddCommand(salesCmd)
	salesCmd.Flags().StringVar(&salesOutlet, "outlet", "Outlet_01", "outlet to forecast")
	salesCmd.Flags().IntVar(&salesPeriods, "periods", 6, "number of future periods to forecast")
	salesCmd.Flags().IntVar(&salesTop, "top", sales.DefaultTopN, "number of outlets in the top performers chart")
	salesCmd.Flags().StringVar(&salesFreq, "freq", "MS", "forecast frequency: MS (month start) | W | D")
	salesCmd.Flags().BoolVar(&salesXLSX, "xlsx", false, "also write the computed tables to sales.xlsx")
	salesCmd.Flags().BoolVar(&salesNoCharts, "no-charts", false, "skip chart rendering")
}

func salesChartJobs(monthly []sales.MonthlyTotal, top []sales.NamedSeries, outlet string, periods int,
	unit string, history forecast.Series, res *forecast.Result, width float64) []chart.Job {
	trend := chart.Line{Name: "All outlets", T: make([]time.Time, len(monthly)), Y: make([]float64, len(monthly))}
	for i, m := range monthly {
		trend.T[i] = m.Month
		trend.Y[i] = m.Total.InexactFloat64()
	}
	topLines := make([]chart.Line, len(top))
	for i, s := range top {
		topLines[i] = chart.Line{Name: s.Name, T: s.Series.DS, Y: s.Series.Y}
	}
	return []chart.Job{
		{File: "monthly_trend.png", Draw: func(r chart.Renderer, w io.Writer) error {
			return r.Line(chart.LineChart{
				Title: "Overall Diamond Jewellery Sales (All Outlets)", XLabel: "Year", YLabel: "Sales (Lakhs INR)",
				Series: []chart.Line{trend},
			}, w)
		}},
		{File: "top_outlets.png", Draw: func(r chart.Renderer, w io.Writer) error {
			return r.Line(chart.LineChart{
				Title: fmt.Sprintf("Top %d Performing Outlets", len(topLines)), XLabel: "Year", YLabel: "Sales (Lakhs INR)",
				Series: topLines,
			}, w)
		}},
		{File: chartFileName("forecast_", outlet), Draw: func(r chart.Renderer, w io.Writer) error {
			return r.Band(chart.BandChart{
				Title:    fmt.Sprintf("Sales Forecast for %s (Next %d %s)", outlet, periods, strings.ToUpper(unit[:1])+unit[1:]),
				XLabel:   "Year",
				YLabel:   "Sales (Lakhs INR)",
				History:  chart.Line{Name: "Historical Sales", T: history.DS, Y: history.Y},
				Forecast: chart.Line{Name: "Predicted Sales", T: res.T, Y: res.Forecast, Dashed: true},
				BandName: fmt.Sprintf("Prediction Range (%.0f%%)", width*100),
				Lower:    res.Lower,
				Upper:    res.Upper,
			}, w)
		}},
	}
}

func printForecast(outlet string, periods int, unit string, res *forecast.Result) {
	fmt.Printf("\n🔮 Forecast for %s (next %d %s):\n", outlet, periods, unit)
	start := len(res.T) - periods
	if start < 0 {
		start = 0
	}
	for i := start; i < len(res.T); i++ {
		fmt.Printf("  %s  %8.2f  [%8.2f, %8.2f]\n", res.T[i].Format("2006-01-02"), res.Forecast[i], res.Lower[i], res.Upper[i])
	}
}
