package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled digest pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		o, err := a.orchestrator(true)
		if err != nil {
			return err
		}
		o.Start()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		s := <-sigc
		log.Printf("received signal: %s, shutting down", s)
		o.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
