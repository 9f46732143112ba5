package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithIsolatedHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SalesOutlet != "Outlet_01" || c.SalesPeriods != 6 || c.SalesTopN != 5 {
		t.Fatalf("sales defaults = %q/%d/%d", c.SalesOutlet, c.SalesPeriods, c.SalesTopN)
	}
	if c.SegmentClusters != 3 || c.SegmentSeed != 42 || c.SegmentNInit != 10 {
		t.Fatalf("segment defaults = %d/%d/%d", c.SegmentClusters, c.SegmentSeed, c.SegmentNInit)
	}
	if c.ChartBackend != "gonum" {
		t.Fatalf("chart backend = %q", c.ChartBackend)
	}
	if want := filepath.Join(home, ".retailpulse", "runs"); c.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", c.OutputDir, want)
	}
}

func TestSaveThenLoadRoundTripsExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.SalesOutlet = "Outlet_07"
	c.SegmentClusters = 4
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.SalesOutlet != "Outlet_07" || got.SegmentClusters != 4 {
		t.Fatalf("reloaded = %q/%d", got.SalesOutlet, got.SegmentClusters)
	}
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RETAILPULSE_SALES_PERIODS", "12")
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SalesPeriods != 12 {
		t.Fatalf("periods = %d, want 12", c.SalesPeriods)
	}
}
