package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/retailpulse-cli/internal/analysis"
	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
	"github.com/KaramelBytes/retailpulse-cli/internal/run"
	"github.com/spf13/cobra"
)

var (
	descOutputPath string
	descSampleRows int
	descTopValues  int
	descSave       bool
	descQuiet      bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Summarise CSV/TSV/XLSX tables column by column",
	Long: `Prints a per-column summary of each input: inferred type, missing values,
count/mean/std/min/quartiles/max for numeric columns, and top values for
categorical ones. Arguments may be glob patterns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if descOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output accepts a single input; use --save for several files")
		}
		popt, err := datasetOptions()
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		opt.Parse = popt
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = descSampleRows
		}
		if descTopValues > 0 {
			opt.TopValues = descTopValues
		}

		var r *run.Run
		if descSave {
			r, err = run.New(config().OutputDir, run.KindDescribe, files[0], time.Now())
			if err != nil {
				return err
			}
		}
		used := map[string]int{}
		total := len(files)
		for i, path := range files {
			if total > 1 && !descQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := dataset.ReadTable(path, popt)
			if err != nil {
				return err
			}
			md := analysis.Describe(t, opt).Markdown()

			written := false
			if descOutputPath != "" {
				if err := os.WriteFile(descOutputPath, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Printf("✓ Wrote summary to %s\n", descOutputPath)
				written = true
			}
			if r != nil {
				name := summaryName(path, used)
				if _, err := r.WriteArtifact(run.ArtifactReport, name, []byte(md)); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !descQuiet {
					fmt.Printf("✓ Added summary %s\n", name)
				}
				written = true
			}
			if !written && !descQuiet {
				fmt.Println(md)
			}
		}
		if r != nil {
			if err := r.Save(); err != nil {
				return fmt.Errorf("save manifest: %w", err)
			}
			fmt.Printf("✓ Run %s saved to %s\n", r.ID, r.RootDir())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	describeCmd.Flags().IntVar(&descTopValues, "top-values", 8, "top values listed per categorical column")
	describeCmd.Flags().BoolVar(&descSave, "save", false, "save summaries into a run directory")
	describeCmd.Flags().BoolVar(&descQuiet, "quiet", false, "suppress progress and non-essential output")
}

// expandInputs resolves glob patterns, keeping literal paths that exist, and
// returns a sorted, de-duplicated list.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryName gives each input a distinct <base>.summary.md, suffixing
// __2, __3... when basenames collide.
func summaryName(path string, used map[string]int) string {
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	used[safe]++
	if n := used[safe]; n > 1 {
		return fmt.Sprintf("%s__%d.summary.md", safe, n)
	}
	return safe + ".summary.md"
}
