// Package insight turns pipeline results into the plain-text insights printed
// to the terminal and the Markdown reports saved with each run.
package insight

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/retailpulse-cli/internal/analysis"
	"github.com/KaramelBytes/retailpulse-cli/internal/forecast"
	"github.com/KaramelBytes/retailpulse-cli/internal/sales"
	"github.com/KaramelBytes/retailpulse-cli/internal/segment"
)

// SalesInsights returns the numbered reading guide for the sales charts.
// unit names the forecast periods, e.g. "months".
func SalesInsights(outlet string, top, periods int, unit string) []string {
	return []string{
		"1. The first chart shows how total jewellery sales grew across all outlets.",
		fmt.Sprintf("2. The second chart highlights the Top %d outlets – useful for benchmarking.", top),
		fmt.Sprintf("3. The forecast chart shows how %s is expected to perform in the next %d %s.", outlet, periods, unit),
		"   • Blue line = Actual sales history",
		"   • Red dashed line = Predicted sales",
		"   • Pink shaded area = Safe range (high/low possible values)",
		"👉 Managers can use this to plan inventory, promotions, and staffing for peak seasons.",
	}
}

// PersonaReport prints one block per cluster profile.
func PersonaReport(profiles []segment.Profile) string {
	var b strings.Builder
	for i, p := range profiles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- Persona %d ---\n", p.Cluster)
		fmt.Fprintf(&b, "Average Age: %s\n", formatAge(p.AvgAge))
		fmt.Fprintf(&b, "Average Spend (INR): %s\n", p.AvgSpend.String())
		fmt.Fprintf(&b, "Top City: %s\n", p.TopCity)
		fmt.Fprintf(&b, "Top Occasion: %s\n", p.TopOccasion)
		fmt.Fprintf(&b, "Preferred Channel: %s\n", p.TopChannel)
		label := p.Label
		if label == "" {
			label = p.Persona.String()
		}
		fmt.Fprintf(&b, "Meaning: %s – %s\n", label, p.Persona.Description())
	}
	return b.String()
}

func formatAge(a float64) string {
	s := strconv.FormatFloat(a, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// SalesSummary carries everything the sales report shows.
type SalesSummary struct {
	Input         string
	Records       int
	Months        []sales.MonthlyTotal
	Top           []sales.OutletTotal
	Outlet        string
	Periods       int
	Unit          string
	History       forecast.Series
	Forecast      *forecast.Result
	IntervalWidth float64
	Charts        []string // relative to the run directory
}

// SalesReport renders the Markdown summary of a sales run.
func SalesReport(s SalesSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sales forecast: %s\n\n", filepath.Base(s.Input))
	fmt.Fprintf(&b, "- Records: %d\n", s.Records)
	if n := len(s.Months); n > 0 {
		fmt.Fprintf(&b, "- Months: %d (%s to %s)\n", n, s.Months[0].Month.Format("2006-01"), s.Months[n-1].Month.Format("2006-01"))
	}
	unit := s.Unit
	if unit == "" {
		unit = "months"
	}
	fmt.Fprintf(&b, "- Forecast outlet: %s, horizon %d %s\n\n", s.Outlet, s.Periods, unit)

	b.WriteString("## Monthly total sales (lakhs)\n\n| Month | Total |\n|---|---|\n")
	for _, m := range s.Months {
		fmt.Fprintf(&b, "| %s | %s |\n", m.Month.Format("2006-01"), m.Total.StringFixed(2))
	}

	fmt.Fprintf(&b, "\n## Top %d outlets\n\n| Rank | Outlet | Total (lakhs) |\n|---|---|---|\n", len(s.Top))
	for i, o := range s.Top {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, o.Outlet, o.Total.StringFixed(2))
	}

	if s.Forecast != nil {
		fmt.Fprintf(&b, "\n## Forecast for %s (%.0f%% interval)\n\n| Month | yhat | lower | upper |\n|---|---|---|---|\n",
			s.Outlet, s.IntervalWidth*100)
		start := len(s.Forecast.T) - s.Periods
		if start < 0 {
			start = 0
		}
		for i := start; i < len(s.Forecast.T); i++ {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f |\n", s.Forecast.T[i].Format(periodLayout(unit)),
				s.Forecast.Forecast[i], s.Forecast.Lower[i], s.Forecast.Upper[i])
		}
	}

	b.WriteString("\n## Insights\n\n")
	for _, line := range SalesInsights(s.Outlet, len(s.Top), s.Periods, unit) {
		b.WriteString(line + "\n")
	}
	writeCharts(&b, s.Charts)
	return b.String()
}

// CustomerSummary carries everything the customer report shows.
type CustomerSummary struct {
	Input     string
	Describe  *analysis.Report
	Occasions []analysis.CategoryCount
	Cities    []analysis.CategoryTotal
	Profiles  []segment.Profile
	Inertia   float64
	Charts    []string // relative to the run directory
}

// CustomerReport renders the Markdown summary of a segmentation run.
func CustomerReport(s CustomerSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Customer segmentation: %s\n\n", filepath.Base(s.Input))
	if s.Describe != nil {
		fmt.Fprintf(&b, "- Transactions: %d\n", s.Describe.Rows)
	}
	fmt.Fprintf(&b, "- Clusters: %d (inertia %.2f)\n", len(s.Profiles), s.Inertia)
	if s.Describe != nil {
		b.WriteString("\n## Numeric summary\n\n| Column | Mean | Std | Min | 25% | 50% | 75% | Max |\n|---|---|---|---|---|---|---|---|\n")
		for _, c := range s.Describe.Cols {
			if c.Kind != "numeric" {
				continue
			}
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				c.Name, c.Mean, c.Std, c.Min, c.Q1, c.Q2, c.Q3, c.Max)
		}
	}

	b.WriteString("\n## Purchases by occasion\n\n| Occasion | Count |\n|---|---|\n")
	for _, o := range s.Occasions {
		fmt.Fprintf(&b, "| %s | %d |\n", o.Value, o.Count)
	}
	b.WriteString("\n## Revenue by city (INR)\n\n| City | Revenue | Transactions |\n|---|---|---|\n")
	for _, c := range s.Cities {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", c.Key, c.Total.StringFixed(0), c.Count)
	}

	b.WriteString("\n## Personas\n\n| Cluster | Persona | Customers | Avg age | Avg spend | Top city | Top occasion | Channel |\n|---|---|---|---|---|---|---|---|\n")
	for _, p := range s.Profiles {
		fmt.Fprintf(&b, "| %d | %s | %d | %s | %s | %s | %s | %s |\n",
			p.Cluster, p.Label, p.Size, formatAge(p.AvgAge), p.AvgSpend.String(), p.TopCity, p.TopOccasion, p.TopChannel)
	}
	b.WriteString("\n```\n")
	b.WriteString(PersonaReport(s.Profiles))
	b.WriteString("```\n")
	writeCharts(&b, s.Charts)
	return b.String()
}

// periodLayout keeps month-level dates short and shows the day otherwise.
func periodLayout(unit string) string {
	if strings.HasPrefix(unit, "month") {
		return "2006-01"
	}
	return "2006-01-02"
}

// writeCharts links charts by their path relative to the report, which sits
// at the run root.
func writeCharts(b *strings.Builder, charts []string) {
	if len(charts) == 0 {
		return
	}
	b.WriteString("\n## Charts\n\n")
	for _, c := range charts {
		name := filepath.Base(c)
		fmt.Fprintf(b, "![%s](%s)\n", strings.TrimSuffix(name, filepath.Ext(name)), filepath.ToSlash(c))
	}
}
