package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"eventsScraper/internal/app"
	"eventsScraper/internal/ingest"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/orchestrator"
	"eventsScraper/internal/utils/logger/sl"
)

var batchDryRun bool

func init() {
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "extract and assemble without saving")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Processes event URLs from a file or stdin, one per line.",
	Long: "Processes event URLs from a file or stdin, one per line. " +
		"Interactive input ends with an empty stdin or a line containing \"stop\".",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), `Enter event URLs, one per line. Type "stop" to finish.`)
		}

		urls, err := readURLs(in)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return fmt.Errorf("no event URLs provided")
		}

		return runBatch(cmd.Context(), cmd.OutOrStdout(), urls, !batchDryRun)
	},
}

// readURLs читает ссылки построчно. Пустые строки пропускаются, "stop" завершает ввод.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "stop") {
			break
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return urls, nil
}

// batchRow — строка итоговой таблицы.
type batchRow struct {
	URL    string
	Source domain.Source
	Title  string
	Status string
}

func runBatch(ctx context.Context, w io.Writer, urls []string, persist bool) error {
	var store app.Store
	if persist {
		s, err := app.NewStore(ctx, log, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Shutdown(context.Background()); err != nil {
				log.Error("store shutdown", sl.Err(err))
			}
		}()
		store = s
	}

	pipeline := app.NewPipeline(log, cfg, nil, store)

	var (
		mu   sync.Mutex
		rows = make(map[string]batchRow, len(urls))
	)
	process := func(ctx context.Context, url string) error {
		out, err := pipeline.Ingest.Process(ctx, url)
		mu.Lock()
		rows[url] = outcomeRow(out, err)
		mu.Unlock()
		return err
	}

	fmt.Fprintf(w, "Processing %d events...\n", len(urls))
	res := orchestrator.RunBatch(ctx, urls, process, func(p domain.Progress) {
		writeProgress(w, p)
	})

	renderSummary(w, urls, rows, res)
	return nil
}

func outcomeRow(out ingest.Outcome, err error) batchRow {
	row := batchRow{URL: out.URL}
	if out.Details != nil {
		row.Source = out.Details.Source
		row.Title = out.Details.Title
	}
	switch {
	case err != nil:
		row.Status = "failed: " + err.Error()
	case out.Created:
		row.Status = "added"
	default:
		row.Status = "already exists"
	}
	return row
}

func writeProgress(w io.Writer, p domain.Progress) {
	switch {
	case p.IsTerminal():
		fmt.Fprintln(w, "\n=== Processing Complete ===")
	case p.Status == domain.ProgressProcessing:
		fmt.Fprintf(w, "\n--- Event %d/%d ---\n%s\n", p.Index, p.Total, p.URL)
	case p.Error:
		fmt.Fprintf(w, "Failed: %s\n", p.Reason)
	default:
		fmt.Fprintln(w, "Done")
	}
}

func renderSummary(w io.Writer, urls []string, rows map[string]batchRow, res orchestrator.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Source", "Title", "Status"})

	for i, u := range urls {
		row, ok := rows[u]
		if !ok {
			row = batchRow{URL: u, Status: "skipped"}
		}
		title := row.Title
		if title == "" {
			title = row.URL
		}
		t.AppendRow(table.Row{i + 1, row.Source, title, row.Status})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(w, "Successfully processed: %d/%d events\n", res.Succeeded, res.Total)
	fmt.Fprintf(w, "Failed: %d events\n", res.Total-res.Succeeded)
	if res.Cancelled {
		fmt.Fprintf(w, "Cancelled: %d events skipped\n", res.Skipped)
	}
}
