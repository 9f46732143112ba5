// Package sales aggregates outlet revenue records: monthly totals, outlet
// rankings, and per-outlet series for forecasting.
package sales

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
	"github.com/KaramelBytes/retailpulse-cli/internal/forecast"
)

// DefaultTopN is the number of outlets compared in the top performers chart.
const DefaultTopN = 5

// ErrUnknownOutlet is returned when an outlet has no rows in the input.
var ErrUnknownOutlet = errors.New("unknown outlet")

// MonthlyTotal is the combined revenue of all outlets for one month.
type MonthlyTotal struct {
	Month time.Time       `json:"month" yaml:"month"`
	Total decimal.Decimal `json:"total" yaml:"total"`
}

// OutletTotal is the revenue of one outlet across the whole input.
type OutletTotal struct {
	Outlet   string          `json:"outlet" yaml:"outlet"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
	FirstRow int             `json:"first_row" yaml:"first_row"`
	Rows     int             `json:"rows" yaml:"rows"`
}

// MonthlyTotals sums sales per month, ascending by month.
func MonthlyTotals(records []dataset.SalesRecord) []MonthlyTotal {
	byMonth := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		byMonth[r.Month] = byMonth[r.Month].Add(r.Sales)
	}
	out := make([]MonthlyTotal, 0, len(byMonth))
	for m, tot := range byMonth {
		out = append(out, MonthlyTotal{Month: m, Total: tot})
	}
	slices.SortFunc(out, func(a, b MonthlyTotal) int { return a.Month.Compare(b.Month) })
	return out
}

// OutletTotals sums sales per outlet, in order of first appearance.
func OutletTotals(records []dataset.SalesRecord) []OutletTotal {
	pos := make(map[string]int)
	var out []OutletTotal
	for i, r := range records {
		j, ok := pos[r.Outlet]
		if !ok {
			j = len(out)
			pos[r.Outlet] = j
			out = append(out, OutletTotal{Outlet: r.Outlet, FirstRow: i})
		}
		out[j].Total = out[j].Total.Add(r.Sales)
		out[j].Rows++
	}
	return out
}

// TopOutlets ranks outlets by descending total and keeps at most n of them.
// Equal totals keep the order in which the outlets first appear.
func TopOutlets(records []dataset.SalesRecord, n int) []OutletTotal {
	totals := OutletTotals(records)
	slices.SortStableFunc(totals, func(a, b OutletTotal) int {
		return b.Total.Cmp(a.Total)
	})
	if n >= 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// SelectOutlets returns the indices of rows whose outlet is one of outlets.
func SelectOutlets(records []dataset.SalesRecord, outlets []OutletTotal) *roaring.Bitmap {
	want := make(map[string]struct{}, len(outlets))
	for _, o := range outlets {
		want[o.Outlet] = struct{}{}
	}
	bm := roaring.New()
	for i, r := range records {
		if _, ok := want[r.Outlet]; ok {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Subset materialises a row selection in original row order.
func Subset(records []dataset.SalesRecord, rows *roaring.Bitmap) []dataset.SalesRecord {
	out := make([]dataset.SalesRecord, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i < len(records) {
			out = append(out, records[i])
		}
	}
	return out
}

// OutletSeries extracts one outlet's (month, sales) history sorted by month.
// Duplicate months for the same outlet are summed.
func OutletSeries(records []dataset.SalesRecord, outlet string) (forecast.Series, error) {
	var own []dataset.SalesRecord
	for _, r := range records {
		if r.Outlet == outlet {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return forecast.Series{}, fmt.Errorf("%w: %s", ErrUnknownOutlet, outlet)
	}
	monthly := MonthlyTotals(own)
	s := forecast.Series{DS: make([]time.Time, len(monthly)), Y: make([]float64, len(monthly))}
	for i, m := range monthly {
		s.DS[i] = m.Month
		s.Y[i] = m.Total.InexactFloat64()
	}
	return s, nil
}

// SeriesByOutlet groups rows into one monthly series per outlet, keyed in the
// order given by outlets.
func SeriesByOutlet(records []dataset.SalesRecord, outlets []OutletTotal) []NamedSeries {
	out := make([]NamedSeries, 0, len(outlets))
	for _, o := range outlets {
		s, err := OutletSeries(records, o.Outlet)
		if err != nil {
			continue
		}
		out = append(out, NamedSeries{Name: o.Outlet, Series: s})
	}
	return out
}

// NamedSeries labels a series for charting.
type NamedSeries struct {
	Name   string
	Series forecast.Series
}
