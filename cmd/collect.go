package cmd

import (
	"context"
	"fmt"

	"ai-news-digest/internal/fetch"
	"ai-news-digest/internal/youtube"

	"github.com/spf13/cobra"
)

// collectCmd runs the collectors once. With no argument every source kind
// runs; "feeds", "channels", or "scrape" restricts to one.
var collectCmd = &cobra.Command{
	Use:       "collect [feeds|channels|scrape]",
	Short:     "Collect new content from configured sources",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"feeds", "channels", "scrape"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}
		ctx := context.Background()

		total := 0
		if kind == "" || kind == "feeds" {
			total += fetch.NewFeedFetcher(a.store).CollectAll(ctx, a.feedSources())
		}
		if kind == "" || kind == "channels" {
			yt := youtube.NewClient(a.cfg.YouTube.BaseURL, a.cfg.YouTube.APIKey)
			total += fetch.NewChannelFetcher(a.store, yt, a.cfg.YouTube.MaxResults).CollectAll(ctx, a.channelSources())
		}
		if kind == "" || kind == "scrape" {
			total += fetch.NewScrapeFetcher(a.store).CollectAll(ctx, a.scrapeSources())
		}
		fmt.Printf("collected %d new items\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
