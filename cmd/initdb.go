package cmd

import (
	"context"
	"fmt"

	"ai-news-digest/internal/digest"

	"github.com/spf13/cobra"
)

// initdbCmd creates the database schema and seeds the default event list.
var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Initialize the database and seed default events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.SeedEvents(context.Background(), digest.DefaultEvents()); err != nil {
			return err
		}
		fmt.Println("database initialized")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}
