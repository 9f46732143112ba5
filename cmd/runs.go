package cmd

import (
	"fmt"

	"github.com/KaramelBytes/retailpulse-cli/internal/run"
	"github.com/spf13/cobra"
)

var runsKind string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or inspect saved runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := run.List(config().OutputDir)
		if err != nil {
			return err
		}
		found := false
		for _, r := range runs {
			if runsKind != "" && string(r.Kind) != runsKind {
				continue
			}
			fmt.Printf("- %s  %s  %d artifacts  (%s)\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), len(r.Artifacts), r.Input)
			found = true
		}
		if !found {
			fmt.Println("(no runs)")
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a run's manifest (id, uuid or unique prefix, or a path inside the run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := run.Find(config().OutputDir, args[0])
		if err != nil {
			return err
		}
		b, err := r.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		fmt.Printf("Location: %s\n", r.RootDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsListCmd.Flags().StringVar(&runsKind, "kind", "", "only list runs of this kind: sales|customers|describe")
}
