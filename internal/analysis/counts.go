// Package analysis holds the descriptive statistics shared by the pipelines:
// per-column summaries, value counts, and keyed totals.
package analysis

import (
	"slices"

	"github.com/shopspring/decimal"
)

// ValueCounts counts each distinct value, most frequent first. Equal counts
// keep the order in which values first appear.
func ValueCounts(values []string) []CategoryCount {
	pos := map[string]int{}
	var out []CategoryCount
	for _, v := range values {
		i, ok := pos[v]
		if !ok {
			i = len(out)
			pos[v] = i
			out = append(out, CategoryCount{Value: v})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b CategoryCount) int { return b.Count - a.Count })
	return out
}

// CategoryTotal is the summed amount for one key.
type CategoryTotal struct {
	Key   string          `json:"key" yaml:"key"`
	Total decimal.Decimal `json:"total" yaml:"total"`
	Count int             `json:"count" yaml:"count"`
}

// SumBy totals amounts[i] under keys[i], largest total first. Equal totals
// keep first-appearance order.
func SumBy(keys []string, amounts []decimal.Decimal) []CategoryTotal {
	pos := map[string]int{}
	var out []CategoryTotal
	for i, k := range keys {
		if i >= len(amounts) {
			break
		}
		j, ok := pos[k]
		if !ok {
			j = len(out)
			pos[k] = j
			out = append(out, CategoryTotal{Key: k})
		}
		out[j].Total = out[j].Total.Add(amounts[i])
		out[j].Count++
	}
	slices.SortStableFunc(out, func(a, b CategoryTotal) int { return b.Total.Cmp(a.Total) })
	return out
}
