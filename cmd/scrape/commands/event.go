package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"eventsScraper/internal/app"
	"eventsScraper/internal/models/domain"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var eventOutput string

func init() {
	eventCmd.Flags().StringVarP(&eventOutput, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(eventCmd)
}

var eventCmd = &cobra.Command{
	Use:     "event <url>",
	Short:   "Extracts a single event page and prints its details.",
	Example: "scrape event https://www.webtickets.co.za/v2/event.aspx?itemid=1573126494",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		out := cmd.OutOrStdout()

		pipeline := app.NewPipeline(log, cfg, nil, nil)

		if eventOutput == outputText {
			fmt.Fprintf(out, "Scraping event from: %s\n", url)
		}

		details, err := pipeline.Scraper.Extract(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to extract event details: %w", err)
		}

		return writeDetails(out, details, eventOutput)
	},
}

func writeDetails(w io.Writer, details *domain.EventDetails, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(details)

	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(details); err != nil {
			return err
		}
		return enc.Close()

	case outputText:
		fmt.Fprintln(w, "\n=== Event Details ===")
		fmt.Fprintf(w, "Title: %s\n", details.Title)
		fmt.Fprintf(w, "Venue: %s\n", details.Venue)
		fmt.Fprintf(w, "Location: %s\n", details.Location)
		if details.StartDate != nil {
			fmt.Fprintf(w, "Start Date: %s\n", details.StartDate.Format("2006-01-02 15:04:05"))
		}
		if details.EndDate != nil {
			fmt.Fprintf(w, "End Date: %s\n", details.EndDate.Format("2006-01-02 15:04:05"))
		}
		if details.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", details.Description)
		}
		if len(details.Prices) > 0 {
			fmt.Fprintln(w, "\nPrices:")
			for _, p := range details.Prices {
				fmt.Fprintf(w, "  - %s: %s\n", p.Type, p.Price)
			}
		}
		if details.ImageURL != "" {
			fmt.Fprintf(w, "Image URL: %s\n", details.ImageURL)
		}

		fmt.Fprintln(w, "\n=== Full JSON Output ===")
		return writeDetails(w, details, outputJSON)

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
