package segment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
)

func TestClassifyPersonaDecisionTable(t *testing.T) {
	cases := []struct {
		name  string
		age   float64
		spend float64
		want  Persona
	}{
		{"young budget", 25, 90000, YoungBudget},
		{"young budget edge", 29.9, 119999, YoungBudget},
		{"budget spend but not young", 30, 90000, PremiumLuxury},
		{"mid range lower edges", 30, 120000, MidRangeOccasion},
		{"mid range", 35.5, 200000, MidRangeOccasion},
		{"mid range upper edges", 39.9, 249999, MidRangeOccasion},
		{"mid spend but young", 28, 150000, PremiumLuxury},
		{"mid spend but 40", 40, 150000, PremiumLuxury},
		{"premium spend", 35, 250000, PremiumLuxury},
		{"older premium", 52, 420000, PremiumLuxury},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ClassifyPersona(c.age, c.spend))
		})
	}
	assert.Equal(t, "Young Budget Buyers", YoungBudget.String())
	assert.Equal(t, "Mid-range Occasion Buyers", MidRangeOccasion.String())
	assert.Equal(t, "Premium Luxury Buyers", PremiumLuxury.String())
}

func blobs() [][]float64 {
	centers := [][]float64{{24, 80000}, {35, 180000}, {55, 400000}}
	offsets := [][]float64{{-1, -3000}, {0, 0}, {1, 2500}, {0.5, -1000}, {-0.5, 1500}}
	var x [][]float64
	for i := 0; i < 5; i++ {
		for _, c := range centers {
			x = append(x, []float64{c[0] + offsets[i][0], c[1] + offsets[i][1]})
		}
	}
	return x
}

func TestKMeansRecoversSeparatedBlobs(t *testing.T) {
	x := blobs()
	fit, err := NewKMeans().FitPredict(x)
	require.NoError(t, err)
	require.Len(t, fit.Labels, len(x))

	// rows cycle through the three centers, so rows i and i+3 share a cluster
	for i := 0; i+3 < len(x); i++ {
		assert.Equal(t, fit.Labels[i], fit.Labels[i+3], "row %d", i)
	}
	assert.NotEqual(t, fit.Labels[0], fit.Labels[1])
	assert.NotEqual(t, fit.Labels[1], fit.Labels[2])
	assert.NotEqual(t, fit.Labels[0], fit.Labels[2])
	for _, l := range fit.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 3)
	}
}

func TestKMeansDeterministicForSeed(t *testing.T) {
	x := blobs()
	a, err := NewKMeans().FitPredict(x)
	require.NoError(t, err)
	b, err := NewKMeans().FitPredict(x)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)
}

func TestKMeansTooFewSamples(t *testing.T) {
	_, err := NewKMeans().FitPredict([][]float64{{1, 2}, {3, 4}})
	assert.True(t, errors.Is(err, ErrTooFewSamples))
}

func tx(age float64, price int64, city, occ, ch string) dataset.Transaction {
	return dataset.Transaction{Age: age, Price: decimal.NewFromInt(price), City: city, Occasion: occ, Channel: ch}
}

func TestProfilesOrderModeAndRounding(t *testing.T) {
	rows := []dataset.Transaction{
		tx(41, 300000, "Delhi", "Wedding", "Store"),
		tx(24, 90000, "Pune", "Festival", "Online"),
		tx(26, 95001, "Mumbai", "Birthday", "Online"),
		tx(45, 350000, "Delhi", "Heritage", "Store"),
		tx(25, 100000, "Mumbai", "Festival", "Store"),
	}
	labels := []int{2, 0, 0, 2, 0}
	profiles, err := Profiles(rows, labels)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	premium := profiles[0]
	assert.Equal(t, 2, premium.Cluster)
	assert.Equal(t, 2, premium.Size)
	assert.Equal(t, 43.0, premium.AvgAge)
	assert.Equal(t, "325000", premium.AvgSpend.String())
	assert.Equal(t, "Delhi", premium.TopCity)
	assert.Equal(t, "Heritage", premium.TopOccasion) // tie -> smallest
	assert.Equal(t, PremiumLuxury, premium.Persona)

	young := profiles[1]
	assert.Equal(t, 0, young.Cluster)
	assert.Equal(t, 25.0, young.AvgAge)
	assert.Equal(t, "95000", young.AvgSpend.String())
	assert.Equal(t, "Mumbai", young.TopCity)
	assert.Equal(t, "Festival", young.TopOccasion)
	assert.Equal(t, "Online", young.TopChannel)
	assert.Equal(t, YoungBudget, young.Persona)
	assert.Equal(t, []uint32{1, 2, 4}, young.Members.ToArray())

	_, err = Profiles(rows, labels[:2])
	assert.Error(t, err)
}
