package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var runJob string

// runCmd executes the pipeline once, outside the schedule. With --job it
// runs a single stage instead.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline once (collect, enrich, assemble, deliver)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		o, err := a.orchestrator(false)
		if err != nil {
			return err
		}
		ctx := context.Background()
		if runJob != "" {
			return o.RunNow(ctx, runJob)
		}
		return o.RunAll(ctx)
	},
}

func init() {
	runCmd.Flags().StringVar(&runJob, "job", "", "run a single job: "+jobNames())
	rootCmd.AddCommand(runCmd)
}
