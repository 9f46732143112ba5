package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/retailpulse-cli/internal/config"
	"github.com/KaramelBytes/retailpulse-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags (override config if set)
	cfgFile          string
	debug            bool
	flagLogLevel     string
	flagOutputDir    string
	flagChartBackend string
	flagDelimiter    string
	flagSheet        string
	flagDecimal      string
	flagThousands    string

	// Loaded configuration
	cfg *cfgpkg.Global

	log = logging.Logger()
)

var rootCmd = &cobra.Command{
	Use:   "retailpulse",
	Short: "RetailPulse: outlet sales forecasting and customer segmentation",
	Long: `RetailPulse reads outlet sales and customer transaction tables (CSV, TSV or XLSX),
summarises them, renders charts, fits a sales forecast or customer clusters, and
prints plain-language insights. Every run is saved with a manifest of its artifacts.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.retailpulse/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging (same as --log-level DEBUG)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: DEBUG|INFO|NOTICE|WARNING|ERROR (overrides config)")
	pf.StringVar(&flagOutputDir, "output-dir", "", "directory for run outputs (overrides config)")
	pf.StringVar(&flagChartBackend, "chart-backend", "", "chart renderer: gonum|gochart (overrides config)")
	pf.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (auto if omitted)")
	pf.StringVar(&flagSheet, "sheet", "", "XLSX: sheet name to read (first sheet if omitted)")
	pf.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	pf.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if debug {
		cfg.LogLevel = "DEBUG"
	}
	if f.Changed("output-dir") && flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if f.Changed("chart-backend") && flagChartBackend != "" {
		cfg.ChartBackend = flagChartBackend
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}

	if err := logging.Init(os.Stderr, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: invalid log level %q, using WARNING\n", cfg.LogLevel)
		_ = logging.Init(os.Stderr, "WARNING")
	}
	log.Debugf("config loaded: output_dir=%s chart_backend=%s", cfg.OutputDir, cfg.ChartBackend)
}
