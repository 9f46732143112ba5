package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/retailpulse-cli/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set RetailPulse configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "output_dir":
		c.OutputDir = val
	case "log_level":
		switch strings.ToUpper(val) {
		case "DEBUG", "INFO", "NOTICE", "WARNING", "ERROR", "CRITICAL":
			c.LogLevel = strings.ToUpper(val)
		default:
			return fmt.Errorf("invalid log_level: %s", val)
		}
	case "delimiter":
		c.Delimiter = val
	case "sheet":
		c.Sheet = val
	case "chart_backend":
		switch strings.ToLower(val) {
		case "gonum", "gochart":
			c.ChartBackend = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid chart_backend: %s (use gonum or gochart)", val)
		}
	case "sales_outlet":
		c.SalesOutlet = val
	case "chart_width", "chart_height", "sales_periods", "sales_top_n", "forecast_changepoints",
		"forecast_yearly_order", "segment_clusters", "segment_n_init", "segment_max_iter":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*intField(c, key) = i
	case "segment_seed":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for segment_seed: %w", err)
		}
		c.SegmentSeed = i
	case "forecast_interval_width":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid forecast_interval_width: %v (must be in (0,1))", val)
		}
		c.ForecastIntervalWidth = f
	case "forecast_changepoint_prior":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for forecast_changepoint_prior: %v", val)
		}
		c.ForecastChangepointPrior = f
	default:
		keys := make([]string, 0)
		for k := range cfgpkg.Defaults() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(keys, ", "))
	}
	return nil
}

func intField(c *cfgpkg.Global, key string) *int {
	switch key {
	case "chart_width":
		return &c.ChartWidth
	case "chart_height":
		return &c.ChartHeight
	case "sales_periods":
		return &c.SalesPeriods
	case "sales_top_n":
		return &c.SalesTopN
	case "forecast_changepoints":
		return &c.ForecastChangepoints
	case "forecast_yearly_order":
		return &c.ForecastYearlyOrder
	case "segment_clusters":
		return &c.SegmentClusters
	case "segment_n_init":
		return &c.SegmentNInit
	}
	return &c.SegmentMaxIter
}
