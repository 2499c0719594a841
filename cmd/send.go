package cmd

import (
	"context"
	"errors"
	"fmt"

	"ai-news-digest/internal/mail"

	"github.com/spf13/cobra"
)

// sendCmd delivers the newest unsent digest.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the latest unsent digest email",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.sender()
		if err != nil {
			return err
		}
		err = s.SendLatest(context.Background())
		if errors.Is(err, mail.ErrNoUnsent) {
			fmt.Println("no unsent digest")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
