package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventsScraper/internal/discovery"
)

var (
	discoverListing []string
	discoverFeeds   []string
	discoverSheet   bool
	discoverRun     bool
)

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverListing, "listing", nil, "listing page to crawl for event links")
	discoverCmd.Flags().StringSliceVar(&discoverFeeds, "feed", nil, "RSS or Atom feed with event links")
	discoverCmd.Flags().BoolVar(&discoverSheet, "sheet", false, "read event links from the configured Google Sheet")
	discoverCmd.Flags().BoolVar(&discoverRun, "run", false, "process the discovered links and save them")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Harvests event URLs from listing pages, feeds or a Google Sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dcfg := cfg.DiscoveryConfig
		if len(discoverListing) > 0 || len(discoverFeeds) > 0 || discoverSheet {
			dcfg.ListingURLs = discoverListing
			dcfg.FeedURLs = discoverFeeds
			if !discoverSheet {
				dcfg.Sheet.SpreadsheetID = ""
			}
		}

		d := discovery.New(log, dcfg)
		urls := d.All(cmd.Context())

		out := cmd.OutOrStdout()
		for _, u := range urls {
			fmt.Fprintln(out, u)
		}

		if !discoverRun {
			return nil
		}
		if len(urls) == 0 {
			return fmt.Errorf("no event URLs discovered")
		}
		return runBatch(cmd.Context(), out, urls, true)
	},
}
