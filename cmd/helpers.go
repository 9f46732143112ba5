package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/retailpulse-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/retailpulse-cli/internal/config"
	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
	"github.com/KaramelBytes/retailpulse-cli/internal/export"
	"github.com/KaramelBytes/retailpulse-cli/internal/run"
)

// config returns the loaded configuration, or defaults when loading was skipped.
func config() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

// datasetOptions maps the delimiter, sheet and number-locale settings onto
// loader options.
func datasetOptions() (dataset.Options, error) {
	c := config()
	var opt dataset.Options
	switch c.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab", "\\t":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", c.Delimiter)
	}
	opt.Sheet = c.Sheet
	switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", flagDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(flagThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", flagThousands)
	}
	return opt, nil
}

// renderCharts draws jobs into <run>/charts, records them on the manifest and
// returns their paths relative to the run directory.
func renderCharts(ctx context.Context, r *run.Run, jobs []chart.Job) ([]string, error) {
	c := config()
	renderer, err := chart.New(c.ChartBackend, c.ChartWidth, c.ChartHeight)
	if err != nil {
		return nil, err
	}
	log.Infof("rendering %d charts with %s backend", len(jobs), c.ChartBackend)
	paths, err := chart.RenderAll(ctx, renderer, r.Path("charts"), jobs)
	if err != nil {
		return nil, err
	}
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := r.AddArtifact(run.ArtifactChart, p); err != nil {
			return nil, err
		}
		fmt.Printf("✓ Chart: %s\n", p)
		rel = append(rel, r.Rel(p))
	}
	return rel, nil
}

// writeWorkbook saves sheets as <run>/<name> and records it on the manifest.
func writeWorkbook(r *run.Run, name string, sheets ...export.Sheet) error {
	path := r.Path(name)
	if err := export.WriteWorkbook(path, sheets...); err != nil {
		return err
	}
	if err := r.AddArtifact(run.ArtifactWorkbook, path); err != nil {
		return err
	}
	fmt.Printf("✓ Workbook: %s\n", path)
	return nil
}

// finishRun writes the Markdown report and the manifest.
func finishRun(r *run.Run, report string) error {
	path, err := r.WriteArtifact(run.ArtifactReport, "report.md", []byte(report))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Debugf("report written to %s", path)
	if err := r.Save(); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	fmt.Printf("✓ Run %s saved to %s\n", r.ID, r.RootDir())
	return nil
}

func chartFileName(prefix, name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return filepath.Clean(prefix + safe + ".png")
}
