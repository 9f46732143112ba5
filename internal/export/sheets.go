package export

import (
	"github.com/KaramelBytes/retailpulse-cli/internal/analysis"
	"github.com/KaramelBytes/retailpulse-cli/internal/forecast"
	"github.com/KaramelBytes/retailpulse-cli/internal/sales"
	"github.com/KaramelBytes/retailpulse-cli/internal/segment"
)

const dateLayout = "2006-01-02"

func MonthlySheet(totals []sales.MonthlyTotal) Sheet {
	sh := Sheet{Name: "Monthly_Totals", Header: []string{"Month", "Sales_Lakhs"}}
	for _, m := range totals {
		sh.Rows = append(sh.Rows, []any{m.Month.Format(dateLayout), m.Total.InexactFloat64()})
	}
	return sh
}

func TopOutletsSheet(top []sales.OutletTotal) Sheet {
	sh := Sheet{Name: "Top_Outlets", Header: []string{"Rank", "Outlet", "Sales_Lakhs", "Rows"}}
	for i, o := range top {
		sh.Rows = append(sh.Rows, []any{i + 1, o.Outlet, o.Total.InexactFloat64(), o.Rows})
	}
	return sh
}

// ForecastSheet lists the history and forecast horizon; Actual is blank for
// future months.
func ForecastSheet(history forecast.Series, res *forecast.Result) Sheet {
	sh := Sheet{Name: "Forecast", Header: []string{"ds", "actual", "yhat", "yhat_lower", "yhat_upper"}}
	actual := make(map[int64]float64, history.Len())
	for i, t := range history.DS {
		actual[t.Unix()] = history.Y[i]
	}
	for i, t := range res.T {
		var a any
		if v, ok := actual[t.Unix()]; ok {
			a = v
		}
		sh.Rows = append(sh.Rows, []any{t.Format(dateLayout), a, res.Forecast[i], res.Lower[i], res.Upper[i]})
	}
	return sh
}

func OccasionSheet(counts []analysis.CategoryCount) Sheet {
	sh := Sheet{Name: "Occasions", Header: []string{"Occasion", "Count"}}
	for _, c := range counts {
		sh.Rows = append(sh.Rows, []any{c.Value, c.Count})
	}
	return sh
}

func CityRevenueSheet(totals []analysis.CategoryTotal) Sheet {
	sh := Sheet{Name: "City_Revenue", Header: []string{"City", "Revenue", "Transactions"}}
	for _, c := range totals {
		sh.Rows = append(sh.Rows, []any{c.Key, c.Total.InexactFloat64(), c.Count})
	}
	return sh
}

func PersonaSheet(profiles []segment.Profile) Sheet {
	sh := Sheet{Name: "Personas", Header: []string{
		"Cluster", "Persona", "Customers", "Avg_Age", "Avg_Spend", "Top_City", "Top_Occasion", "Preferred_Channel",
	}}
	for _, p := range profiles {
		sh.Rows = append(sh.Rows, []any{
			p.Cluster, p.Label, p.Size, p.AvgAge, p.AvgSpend.InexactFloat64(), p.TopCity, p.TopOccasion, p.TopChannel,
		})
	}
	return sh
}
