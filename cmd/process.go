package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var processLimit int

// processCmd enriches pending items once, outside the nightly schedule.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich unprocessed content with the analysis provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.enricher()
		if err != nil {
			return err
		}
		n, err := e.ProcessUnprocessed(context.Background(), processLimit)
		if err != nil {
			return err
		}
		fmt.Printf("processed %d items\n", n)
		return nil
	},
}

func init() {
	processCmd.Flags().IntVar(&processLimit, "limit", 50, "maximum items to process")
	rootCmd.AddCommand(processCmd)
}
