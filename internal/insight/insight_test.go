package insight

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/retailpulse-cli/internal/analysis"
	"github.com/KaramelBytes/retailpulse-cli/internal/forecast"
	"github.com/KaramelBytes/retailpulse-cli/internal/sales"
	"github.com/KaramelBytes/retailpulse-cli/internal/segment"
)

func TestSalesInsightsNamesOutlet(t *testing.T) {
	lines := SalesInsights("Outlet_07", 5, 6, "months")
	assert.Len(t, lines, 7)
	assert.Equal(t, "2. The second chart highlights the Top 5 outlets – useful for benchmarking.", lines[1])
	assert.Equal(t, "3. The forecast chart shows how Outlet_07 is expected to perform in the next 6 months.", lines[2])
	assert.True(t, strings.HasPrefix(lines[6], "👉"))
}

func TestSalesInsightsFollowTopAndUnit(t *testing.T) {
	lines := SalesInsights("Outlet_02", 3, 4, "weeks")
	assert.Contains(t, lines[1], "Top 3 outlets")
	assert.Equal(t, "3. The forecast chart shows how Outlet_02 is expected to perform in the next 4 weeks.", lines[2])
}

func TestPersonaReport(t *testing.T) {
	out := PersonaReport([]segment.Profile{
		{Cluster: 2, AvgAge: 26, AvgSpend: decimal.NewFromInt(80000), TopCity: "Pune", TopOccasion: "Birthday", TopChannel: "Online",
			Persona: segment.YoungBudget, Label: segment.YoungBudget.String()},
		{Cluster: 1, AvgAge: 34.5, AvgSpend: decimal.NewFromInt(180000), TopCity: "Delhi", TopOccasion: "Anniversary", TopChannel: "Store",
			Persona: segment.MidRangeOccasion, Label: segment.MidRangeOccasion.String()},
		{Cluster: 0, AvgAge: 47.3, AvgSpend: decimal.NewFromInt(410000), TopCity: "Mumbai", TopOccasion: "Wedding", TopChannel: "Store",
			Persona: segment.PremiumLuxury},
	})
	assert.Contains(t, out, "--- Persona 2 ---\nAverage Age: 26.0\nAverage Spend (INR): 80000\n")
	assert.Contains(t, out, "Average Age: 47.3")
	assert.Contains(t, out, "Meaning: Young Budget Buyers – Young professionals making affordable gifting or festival purchases\n")
	assert.Contains(t, out, "Meaning: Mid-range Occasion Buyers – "+segment.MidRangeOccasion.Description())
	// an unset Label falls back to the persona name
	assert.Contains(t, out, "Meaning: Premium Luxury Buyers – "+segment.PremiumLuxury.Description())
	assert.Less(t, strings.Index(out, "Persona 2"), strings.Index(out, "Persona 0"))
}

func TestSalesReportOnlyListsHorizon(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{jan, jan.AddDate(0, 1, 0), jan.AddDate(0, 2, 0)}
	rep := SalesReport(SalesSummary{
		Input:         "/tmp/outlets.csv",
		Records:       10,
		Months:        []sales.MonthlyTotal{{Month: jan, Total: decimal.RequireFromString("10.5")}},
		Top:           []sales.OutletTotal{{Outlet: "Outlet_01", Total: decimal.NewFromInt(10)}},
		Outlet:        "Outlet_01",
		Periods:       1,
		Forecast:      &forecast.Result{T: ts, Forecast: []float64{1, 2, 3}, Lower: []float64{0, 1, 2}, Upper: []float64{2, 3, 4}},
		IntervalWidth: 0.8,
		Charts:        []string{"charts/forecast.png"},
	})
	assert.Contains(t, rep, "# Sales forecast: outlets.csv")
	assert.Contains(t, rep, "| 2024-01 | 10.50 |")
	assert.Contains(t, rep, "(80% interval)")
	assert.Contains(t, rep, "| 2024-03 | 3.00 | 2.00 | 4.00 |")
	assert.NotContains(t, rep, "| 2024-02 | 2.00")
	assert.Contains(t, rep, "![forecast](charts/forecast.png)")
	assert.Contains(t, rep, "horizon 1 month\n")
	assert.Contains(t, rep, "Top 1 outlets – useful")
}

func TestSalesReportWeeklyHorizonShowsDays(t *testing.T) {
	d := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rep := SalesReport(SalesSummary{
		Outlet:   "Outlet_01",
		Periods:  2,
		Unit:     "weeks",
		Top:      []sales.OutletTotal{{Outlet: "Outlet_01"}, {Outlet: "Outlet_02"}, {Outlet: "Outlet_03"}},
		Forecast: &forecast.Result{T: []time.Time{d, d.AddDate(0, 0, 7)}, Forecast: []float64{1, 2}, Lower: []float64{0, 1}, Upper: []float64{2, 3}},
	})
	assert.Contains(t, rep, "horizon 2 weeks")
	assert.Contains(t, rep, "| 2024-03-11 | 2.00 |")
	assert.Contains(t, rep, "next 2 weeks.")
	assert.Contains(t, rep, "Top 3 outlets – useful")
}

func TestCustomerReport(t *testing.T) {
	rep := CustomerReport(CustomerSummary{
		Input: "customers.csv",
		Describe: &analysis.Report{Rows: 4, Cols: []analysis.ColumnSummary{
			{Name: "age", Kind: "numeric", Mean: 30, Min: 20, Max: 40},
			{Name: "city", Kind: "categorical"},
		}},
		Occasions: []analysis.CategoryCount{{Value: "Wedding", Count: 3}},
		Cities:    []analysis.CategoryTotal{{Key: "Delhi", Total: decimal.NewFromInt(500000), Count: 2}},
		Profiles:  []segment.Profile{{Cluster: 0, Label: "Premium Luxury Buyers", Size: 4, AvgAge: 30, AvgSpend: decimal.NewFromInt(125000), Persona: segment.PremiumLuxury}},
		Inertia:   12.5,
	})
	assert.Contains(t, rep, "- Transactions: 4")
	assert.Contains(t, rep, "- Clusters: 1 (inertia 12.50)")
	assert.Contains(t, rep, "| age | 30.00 |")
	assert.NotContains(t, rep, "| city |")
	assert.Contains(t, rep, "| Wedding | 3 |")
	assert.Contains(t, rep, "| Delhi | 500000 | 2 |")
	assert.Contains(t, rep, "| 0 | Premium Luxury Buyers | 4 | 30.0 | 125000 |")
	assert.NotContains(t, rep, "## Charts")
}
