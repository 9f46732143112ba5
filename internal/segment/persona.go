package segment

import (
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
)

// Persona is a human-readable label for a customer cluster.
type Persona int

const (
	YoungBudget Persona = iota
	MidRangeOccasion
	PremiumLuxury
)

// Spend and age thresholds of the persona decision table.
const (
	BudgetSpendLimit = 120000
	MidSpendLimit    = 250000
	YoungAgeLimit    = 30
	MidAgeLimit      = 40
)

func (p Persona) String() string {
	switch p {
	case YoungBudget:
		return "Young Budget Buyers"
	case MidRangeOccasion:
		return "Mid-range Occasion Buyers"
	default:
		return "Premium Luxury Buyers"
	}
}

// Description explains who the persona is.
func (p Persona) Description() string {
	switch p {
	case YoungBudget:
		return "Young professionals making affordable gifting or festival purchases"
	case MidRangeOccasion:
		return "Couples/families buying for weddings & anniversaries, moderately price-sensitive"
	default:
		return "High-spending, often older customers from metro cities buying wedding/heritage jewelry"
	}
}

// ClassifyPersona applies the three-branch table to a cluster's average age and spend.
func ClassifyPersona(avgAge, avgSpend float64) Persona {
	switch {
	case avgSpend < BudgetSpendLimit && avgAge < YoungAgeLimit:
		return YoungBudget
	case avgSpend >= BudgetSpendLimit && avgSpend < MidSpendLimit &&
		avgAge >= YoungAgeLimit && avgAge < MidAgeLimit:
		return MidRangeOccasion
	default:
		return PremiumLuxury
	}
}

// Profile summarises one cluster.
type Profile struct {
	Cluster     int             `json:"cluster" yaml:"cluster"`
	Size        int             `json:"size" yaml:"size"`
	AvgAge      float64         `json:"avg_age" yaml:"avg_age"`
	AvgSpend    decimal.Decimal `json:"avg_spend" yaml:"avg_spend"`
	TopCity     string          `json:"top_city" yaml:"top_city"`
	TopOccasion string          `json:"top_occasion" yaml:"top_occasion"`
	TopChannel  string          `json:"top_channel" yaml:"top_channel"`
	Persona     Persona         `json:"-" yaml:"-"`
	Label       string          `json:"persona" yaml:"persona"`

	Members *roaring.Bitmap `json:"-" yaml:"-"`
}

// Profiles builds one profile per cluster label, ordered by the label's first
// appearance in rows. Age is rounded to one decimal and spend to a whole rupee
// before classification.
func Profiles(rows []dataset.Transaction, labels []int) ([]Profile, error) {
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("profiles: %d rows but %d labels", len(rows), len(labels))
	}
	var order []int
	members := map[int]*roaring.Bitmap{}
	for i, l := range labels {
		bm, ok := members[l]
		if !ok {
			bm = roaring.New()
			members[l] = bm
			order = append(order, l)
		}
		bm.Add(uint32(i))
	}

	out := make([]Profile, 0, len(order))
	for _, l := range order {
		bm := members[l]
		var ageSum float64
		spendSum := decimal.Zero
		cities, occasions, channels := map[string]int{}, map[string]int{}, map[string]int{}
		it := bm.Iterator()
		for it.HasNext() {
			r := rows[it.Next()]
			ageSum += r.Age
			spendSum = spendSum.Add(r.Price)
			cities[r.City]++
			occasions[r.Occasion]++
			channels[r.Channel]++
		}
		n := int(bm.GetCardinality())
		avgAge := math.Round(ageSum/float64(n)*10) / 10
		avgSpend := spendSum.Div(decimal.NewFromInt(int64(n))).Round(0)
		persona := ClassifyPersona(avgAge, avgSpend.InexactFloat64())
		out = append(out, Profile{
			Cluster:     l,
			Size:        n,
			AvgAge:      avgAge,
			AvgSpend:    avgSpend,
			TopCity:     Mode(cities),
			TopOccasion: Mode(occasions),
			TopChannel:  Mode(channels),
			Persona:     persona,
			Label:       persona.String(),
			Members:     bm,
		})
	}
	return out, nil
}

// Mode returns the most frequent key; ties go to the lexicographically smallest.
func Mode(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestN := "", -1
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}
