package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`

	// Input parsing
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`

	// Charts
	ChartBackend string `mapstructure:"chart_backend" yaml:"chart_backend"`
	ChartWidth   int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight  int    `mapstructure:"chart_height" yaml:"chart_height"`

	// Sales pipeline
	SalesOutlet  string `mapstructure:"sales_outlet" yaml:"sales_outlet"`
	SalesPeriods int    `mapstructure:"sales_periods" yaml:"sales_periods"`
	SalesTopN    int    `mapstructure:"sales_top_n" yaml:"sales_top_n"`

	// Forecast model
	ForecastIntervalWidth    float64 `mapstructure:"forecast_interval_width" yaml:"forecast_interval_width"`
	ForecastChangepoints     int     `mapstructure:"forecast_changepoints" yaml:"forecast_changepoints"`
	ForecastYearlyOrder      int     `mapstructure:"forecast_yearly_order" yaml:"forecast_yearly_order"`
	ForecastChangepointPrior float64 `mapstructure:"forecast_changepoint_prior" yaml:"forecast_changepoint_prior"`

	// Customer segmentation
	SegmentClusters int   `mapstructure:"segment_clusters" yaml:"segment_clusters"`
	SegmentNInit    int   `mapstructure:"segment_n_init" yaml:"segment_n_init"`
	SegmentSeed     int64 `mapstructure:"segment_seed" yaml:"segment_seed"`
	SegmentMaxIter  int   `mapstructure:"segment_max_iter" yaml:"segment_max_iter"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.retailpulse/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".retailpulse")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("RETAILPULSE")
	v.AutomaticEnv()

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".retailpulse"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; an explicit file that exists but fails to parse is an error
	if err := v.ReadInConfig(); err != nil && cfgFile != "" {
		if _, statErr := os.Stat(cfgFile); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve output_dir default: ~/.retailpulse/runs
	if c.OutputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.OutputDir = filepath.Join(home, ".retailpulse", "runs")
	}
	return &c, nil
}

// Default returns the built-in configuration without reading a file or env.
func Default() *Global {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	var c Global
	_ = v.Unmarshal(&c)
	if home, err := os.UserHomeDir(); err == nil {
		c.OutputDir = filepath.Join(home, ".retailpulse", "runs")
	}
	return &c
}

// Defaults lists the built-in value of every key.
func Defaults() map[string]any {
	return map[string]any{
		"output_dir":                 "",
		"log_level":                  "WARNING",
		"delimiter":                  "",
		"sheet":                      "",
		"chart_backend":              "gonum",
		"chart_width":                1200,
		"chart_height":               600,
		"sales_outlet":               "Outlet_01",
		"sales_periods":              6,
		"sales_top_n":                5,
		"forecast_interval_width":    0.80,
		"forecast_changepoints":      25,
		"forecast_yearly_order":      10,
		"forecast_changepoint_prior": 0.05,
		"segment_clusters":           3,
		"segment_n_init":             10,
		"segment_seed":               42,
		"segment_max_iter":           300,
	}
}
