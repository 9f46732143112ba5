package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/retailpulse-cli/internal/analysis"
	"github.com/KaramelBytes/retailpulse-cli/internal/chart"
	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
	"github.com/KaramelBytes/retailpulse-cli/internal/export"
	"github.com/KaramelBytes/retailpulse-cli/internal/insight"
	"github.com/KaramelBytes/retailpulse-cli/internal/run"
	"github.com/KaramelBytes/retailpulse-cli/internal/segment"
)

var (
	custClusters int
	custSeed     int64
	custNInit    int
	custXLSX     bool
	custNoCharts bool
	custQuiet    bool
)

var customersCmd = &cobra.Command{
	Use:   "customers <file>",
	Short: "Describe customer transactions and segment them into personas",
	Long: `Reads a table with Age, Price, City, Occasion and Channel columns, prints
descriptive statistics, charts purchases by occasion and revenue by city, clusters
customers on Age and Price with k-means, and labels each cluster with a persona.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := config()
		if cmd.Flags().Changed("clusters") {
			c.SegmentClusters = custClusters
		}
		if cmd.Flags().Changed("seed") {
			c.SegmentSeed = custSeed
		}
		if cmd.Flags().Changed("n-init") {
			c.SegmentNInit = custNInit
		}
		if c.SegmentClusters < 1 {
			return fmt.Errorf("--clusters must be at least 1")
		}

		opt, err := datasetOptions()
		if err != nil {
			return err
		}
		raw, err := dataset.ReadTable(path, opt)
		if err != nil {
			return err
		}
		tt, err := dataset.TransactionsFromTable(raw, opt)
		if err != nil {
			return err
		}
		if len(tt.Rows) == 0 {
			return fmt.Errorf("no customer rows in %s", path)
		}
		fmt.Printf("✓ Dataset loaded: %d transactions from %s\n", len(tt.Rows), path)

		dopt := analysis.DefaultOptions()
		dopt.Parse = opt
		rep := analysis.Describe(raw, dopt)
		if !custQuiet {
			fmt.Println("\n📊 Dataset Info:")
			fmt.Println(rep.Markdown())
		}

		occasionVals := make([]string, len(tt.Rows))
		cityKeys := make([]string, len(tt.Rows))
		prices := make([]decimal.Decimal, len(tt.Rows))
		for i, row := range tt.Rows {
			occasionVals[i] = row.Occasion
			cityKeys[i] = row.City
			prices[i] = row.Price
		}
		occasions := analysis.ValueCounts(occasionVals)
		cities := analysis.SumBy(cityKeys, prices)

		km := segment.NewKMeans()
		km.K = c.SegmentClusters
		km.NInit = c.SegmentNInit
		km.MaxIter = c.SegmentMaxIter
		km.Seed = uint64(c.SegmentSeed)
		fit, err := km.FitPredict(tt.Features())
		if err != nil {
			return fmt.Errorf("cluster customers: %w", err)
		}
		log.Infof("k-means converged in %d iterations, inertia %.2f", fit.Iter, fit.Inertia)
		profiles, err := segment.Profiles(tt.Rows, fit.Labels)
		if err != nil {
			return err
		}

		r, err := run.New(c.OutputDir, run.KindCustomers, path, time.Now())
		if err != nil {
			return err
		}
		r.SetParam("clusters", strconv.Itoa(km.K))
		r.SetParam("seed", strconv.FormatInt(c.SegmentSeed, 10))
		r.SetParam("n_init", strconv.Itoa(km.NInit))

		var charts []string
		if !custNoCharts {
			charts, err = renderCharts(cmd.Context(), r, customerChartJobs(occasions, cities, tt.Rows, fit.Labels, km.K))
			if err != nil {
				return err
			}
		}
		if custXLSX {
			if err := writeWorkbook(r, "customers.xlsx",
				export.OccasionSheet(occasions),
				export.CityRevenueSheet(cities),
				export.PersonaSheet(profiles),
			); err != nil {
				return err
			}
		}

		fmt.Println("\n🧑‍🤝‍🧑 Customer Personas (Cluster Summary & Meaning):")
		fmt.Println()
		fmt.Println(insight.PersonaReport(profiles))
		return finishRun(r, insight.CustomerReport(insight.CustomerSummary{
			Input:     path,
			Describe:  rep,
			Occasions: occasions,
			Cities:    cities,
			Profiles:  profiles,
			Inertia:   fit.Inertia,
			Charts:    charts,
		}))
	},
}

func init() {
	rootCmd.AddCommand(customersCmd)
	customersCmd.Flags().IntVar(&custClusters, "clusters", 3, "number of k-means clusters")
	customersCmd.Flags().Int64Var(&custSeed, "seed", 42, "random seed for k-means initialisation")
	customersCmd.Flags().IntVar(&custNInit, "n-init", 10, "number of k-means restarts (best inertia wins)")
	customersCmd.Flags().BoolVar(&custXLSX, "xlsx", false, "also write the computed tables to customers.xlsx")
	customersCmd.Flags().BoolVar(&custNoCharts, "no-charts", false, "skip chart rendering")
	customersCmd.Flags().BoolVarP(&custQuiet, "quiet", "q", false, "do not print the dataset description")
}

func customerChartJobs(occasions []analysis.CategoryCount, cities []analysis.CategoryTotal,
	rows []dataset.Transaction, labels []int, k int) []chart.Job {
	occ := chart.BarChart{Title: "Sales Count by Occasion", XLabel: "Occasion", YLabel: "Count"}
	for _, o := range occasions {
		occ.Labels = append(occ.Labels, o.Value)
		occ.Values = append(occ.Values, float64(o.Count))
	}
	rev := chart.BarChart{Title: "Total Revenue by City", XLabel: "City", YLabel: "Revenue (INR)"}
	for _, c := range cities {
		rev.Labels = append(rev.Labels, c.Key)
		rev.Values = append(rev.Values, c.Total.InexactFloat64())
	}
	groups := make([]chart.ScatterGroup, k)
	for i := range groups {
		groups[i].Name = fmt.Sprintf("Cluster %d", i)
	}
	for i, row := range rows {
		g := &groups[labels[i]]
		g.X = append(g.X, row.Age)
		g.Y = append(g.Y, row.Price.InexactFloat64())
	}
	nonEmpty := groups[:0]
	for _, g := range groups {
		if len(g.X) > 0 {
			nonEmpty = append(nonEmpty, g)
		}
	}
	scatter := chart.ScatterChart{
		Title: "Customer Segmentation by Age & Price", XLabel: "Customer Age", YLabel: "Purchase Value (INR)",
		Groups: nonEmpty,
	}
	return []chart.Job{
		{File: "occasions.png", Draw: func(r chart.Renderer, w io.Writer) error { return r.Bar(occ, w) }},
		{File: "city_revenue.png", Draw: func(r chart.Renderer, w io.Writer) error { return r.Bar(rev, w) }},
		{File: "clusters.png", Draw: func(r chart.Renderer, w io.Writer) error { return r.Scatter(scatter, w) }},
	}
}
