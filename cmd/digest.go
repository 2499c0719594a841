package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var digestOutFile string

// digestCmd assembles and persists today's digest without sending it.
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Assemble and save today's digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.assembler().CreateAndSave(context.Background(), time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("digest %d created for %s with %d items\n",
			doc.ID, doc.Date.Format("2006-01-02"), len(doc.ContentIDs))

		if digestOutFile != "" {
			if err := os.WriteFile(digestOutFile, []byte(doc.HTMLContent), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", digestOutFile, err)
			}
			fmt.Printf("wrote %s\n", digestOutFile)
		}
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&digestOutFile, "out", "", "also write the rendered HTML to a file")
	rootCmd.AddCommand(digestCmd)
}
