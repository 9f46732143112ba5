package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/retailpulse-cli/internal/run"
)

// resetFlags restores every flag to its default so Changed state does not
// leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func execCmd(args ...string) error {
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// isolate points HOME and the run output at temp dirs.
func isolate(t *testing.T) (home, out string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	return home, filepath.Join(home, "runs")
}

func writeSalesCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Month,Outlet,Sales_Lakhs\n")
	for m := 0; m < 36; m++ {
		month := fmt.Sprintf("%d-%02d-01", 2021+m/12, 1+m%12)
		for o := 1; o <= 6; o++ {
			fmt.Fprintf(&b, "%s,Outlet_%02d,%.2f\n", month, o, float64(10*o)+0.5*float64(m))
		}
	}
	path := filepath.Join(dir, "outlet_sales.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func writeCustomersCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Customer_ID,Age,Price,City,Occasion,Channel\n")
	id := 0
	add := func(age, price int, city, occasion, channel string) {
		id++
		fmt.Fprintf(&b, "C%03d,%d,%d,%s,%s,%s\n", id, age, price, city, occasion, channel)
	}
	for i := 0; i < 10; i++ {
		add(21+i%6, 30000+i*2500, "Pune", "Birthday", "Online")
		add(32+i%6, 160000+i*5000, "Delhi", "Anniversary", "Store")
		add(46+i%10, 420000+i*15000, "Mumbai", "Wedding", "Store")
	}
	path := filepath.Join(dir, "customers.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func onlyRun(t *testing.T, out string) *run.Run {
	t.Helper()
	runs, err := run.List(out)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	return runs[0]
}

func artifactKinds(r *run.Run) map[string]int {
	m := map[string]int{}
	for _, a := range r.Artifacts {
		m[a.Kind]++
	}
	return m
}

func TestCLI_SalesRunWritesChartsWorkbookAndReport(t *testing.T) {
	home, out := isolate(t)
	path := writeSalesCSV(t, home)

	runCmd(t, "sales", path, "--output-dir", out, "--xlsx", "--periods", "3")

	r := onlyRun(t, out)
	if r.Kind != run.KindSales || r.Params["periods"] != "3" || r.Params["outlet"] != "Outlet_01" {
		t.Fatalf("unexpected manifest: %+v", r)
	}
	kinds := artifactKinds(r)
	if kinds[run.ArtifactChart] != 3 || kinds[run.ArtifactWorkbook] != 1 || kinds[run.ArtifactReport] != 1 {
		t.Fatalf("artifacts = %v", kinds)
	}
	for _, name := range []string{"charts/monthly_trend.png", "charts/top_outlets.png", "charts/forecast_Outlet_01.png", "sales.xlsx"} {
		if _, err := os.Stat(filepath.Join(r.RootDir(), name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	body, err := os.ReadFile(filepath.Join(r.RootDir(), "report.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	rep := string(body)
	// Outlet_06 has the largest totals; Outlet_01 falls out of the top 5
	if !strings.Contains(rep, "| 1 | Outlet_06 |") || strings.Contains(rep, "| 6 |") {
		t.Fatalf("top outlets table wrong:\n%s", rep)
	}
	if !strings.Contains(rep, "| 2024-03 |") || strings.Contains(rep, "| 2024-04 |") {
		t.Fatalf("forecast horizon wrong:\n%s", rep)
	}
	link := "](charts/forecast_Outlet_01.png)"
	if !strings.Contains(rep, link) {
		t.Fatalf("report should link charts relative to the run:\n%s", rep)
	}
	if strings.Contains(rep, "]("+r.RootDir()) {
		t.Fatalf("report links an absolute path:\n%s", rep)
	}
}

func TestCLI_SalesWeeklyReportFollowsTopAndFrequency(t *testing.T) {
	home, out := isolate(t)
	path := writeSalesCSV(t, home)

	runCmd(t, "sales", path, "--output-dir", out, "--freq", "W", "--top", "3", "--periods", "2", "--no-charts")

	r := onlyRun(t, out)
	body, err := os.ReadFile(filepath.Join(r.RootDir(), "report.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	rep := string(body)
	for _, want := range []string{"horizon 2 weeks", "next 2 weeks.", "Top 3 outlets"} {
		if !strings.Contains(rep, want) {
			t.Fatalf("report missing %q:\n%s", want, rep)
		}
	}
	if strings.Contains(rep, "months") || strings.Contains(rep, "Top 5") {
		t.Fatalf("report kept monthly wording:\n%s", rep)
	}
}

func TestCLI_SalesUnknownOutletFails(t *testing.T) {
	home, out := isolate(t)
	path := writeSalesCSV(t, home)
	if err := execCmd("sales", path, "--output-dir", out, "--outlet", "Outlet_99", "--no-charts"); err == nil {
		t.Fatalf("expected unknown outlet error")
	}
	if runs, _ := run.List(out); len(runs) != 0 {
		t.Fatalf("failed command should not leave a run")
	}
}

func TestCLI_SalesMissingColumnFails(t *testing.T) {
	home, out := isolate(t)
	path := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(path, []byte("Month,Store,Sales_Lakhs\n2024-01-01,A,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := execCmd("sales", path, "--output-dir", out, "--no-charts")
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "outlet") {
		t.Fatalf("expected missing Outlet column error, got %v", err)
	}
}

func TestCLI_CustomersRunLabelsAllPersonas(t *testing.T) {
	home, out := isolate(t)
	path := writeCustomersCSV(t, home)

	runCmd(t, "customers", path, "--output-dir", out, "--xlsx", "--quiet", "--chart-backend", "gochart")

	r := onlyRun(t, out)
	if r.Kind != run.KindCustomers || r.Params["clusters"] != "3" || r.Params["seed"] != "42" {
		t.Fatalf("unexpected manifest: %+v", r)
	}
	kinds := artifactKinds(r)
	if kinds[run.ArtifactChart] != 3 || kinds[run.ArtifactWorkbook] != 1 {
		t.Fatalf("artifacts = %v", kinds)
	}
	body, err := os.ReadFile(filepath.Join(r.RootDir(), "report.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	rep := string(body)
	for _, want := range []string{"Young Budget Buyers", "Mid-range Occasion Buyers", "Premium Luxury Buyers", "| Wedding | 10 |", "| Mumbai |"} {
		if !strings.Contains(rep, want) {
			t.Fatalf("report missing %q:\n%s", want, rep)
		}
	}
}

func TestCLI_CustomersTooFewRowsFails(t *testing.T) {
	home, out := isolate(t)
	path := filepath.Join(home, "tiny.csv")
	if err := os.WriteFile(path, []byte("Age,Price,City,Occasion,Channel\n30,1000,Pune,Birthday,Online\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execCmd("customers", path, "--output-dir", out, "--no-charts", "--quiet"); err == nil {
		t.Fatalf("expected too few samples error")
	}
}

func TestCLI_CustomersHeaderOnlyReportsNoData(t *testing.T) {
	home, out := isolate(t)
	path := filepath.Join(home, "empty.csv")
	if err := os.WriteFile(path, []byte("Age,Price,City,Occasion,Channel\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := execCmd("customers", path, "--output-dir", out, "--no-charts", "--quiet")
	if err == nil || !strings.Contains(err.Error(), "no customer rows") {
		t.Fatalf("expected no customer rows error, got %v", err)
	}
	if runs, _ := run.List(out); len(runs) != 0 {
		t.Fatalf("failed command should not leave a run")
	}
}

func TestCLI_DescribeSaveSuffixesCollisions(t *testing.T) {
	home, out := isolate(t)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(d, "metrics.csv"), []byte("col1,col2\nA,1\nB,2\nC,3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	runCmd(t, "describe", filepath.Join(home, "d*", "metrics.csv"), "--output-dir", out, "--save", "--sample-rows", "0")

	r := onlyRun(t, out)
	for _, name := range []string{"metrics.summary.md", "metrics__2.summary.md"} {
		body, err := os.ReadFile(filepath.Join(r.RootDir(), name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if strings.Contains(string(body), "[HEAD AND SAMPLE ROWS]") {
			t.Fatalf("expected no sample rows in %s", name)
		}
	}
}

func TestCLI_DescribeOutputFile(t *testing.T) {
	home, _ := isolate(t)
	path := writeCustomersCSV(t, home)
	dst := filepath.Join(home, "summary.md")
	runCmd(t, "describe", path, "-o", dst)
	body, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(body), "[DATASET SUMMARY]") || !strings.Contains(string(body), "Rows: 30") {
		t.Fatalf("unexpected summary:\n%s", body)
	}
}

func TestCLI_RunsListAndShow(t *testing.T) {
	home, out := isolate(t)
	path := writeSalesCSV(t, home)
	runCmd(t, "sales", path, "--output-dir", out, "--no-charts")
	r := onlyRun(t, out)

	runCmd(t, "runs", "list", "--output-dir", out)
	runCmd(t, "runs", "show", r.UUID[:8], "--output-dir", out)
	if err := execCmd("runs", "show", "does-not-exist", "--output-dir", out); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}

func TestCLI_ConfigSetPersists(t *testing.T) {
	home, _ := isolate(t)
	runCmd(t, "config", "set", "sales_outlet", "Outlet_04")
	runCmd(t, "config", "set", "segment_clusters", "4")
	if err := execCmd("config", "set", "chart_backend", "matplotlib"); err == nil {
		t.Fatalf("expected invalid chart_backend error")
	}
	if err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}

	runCmd(t, "config", "show")
	if cfg.SalesOutlet != "Outlet_04" || cfg.SegmentClusters != 4 {
		t.Fatalf("config not reloaded: %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(home, ".retailpulse", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
}
