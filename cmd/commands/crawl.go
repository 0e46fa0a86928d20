package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/logger"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/metrics"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var crawlFlags struct {
	date        string
	from        int
	to          int
	tag         string
	retryFailed string
}

func init() {
	crawlCmd.Flags().StringVar(&crawlFlags.date, "date", "", "Departure date to crawl, YYYY-MM-DD. Defaults to CRAWL_DAYS_AHEAD days from today.")
	crawlCmd.Flags().IntVar(&crawlFlags.from, "from", 0, "Index of the first route to crawl.")
	crawlCmd.Flags().IntVar(&crawlFlags.to, "to", -1, "Index after the last route to crawl. Defaults to the end of the route list.")
	crawlCmd.Flags().StringVar(&crawlFlags.tag, "tag", "", "Suffix of the output file names.")
	crawlCmd.Flags().StringVar(&crawlFlags.retryFailed, "retry-failed", "", "Crawl the routes of a failed routes file instead of the route spreadsheet.")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--date YYYY-MM-DD] [--from N] [--to M] [--tag name] [--retry-failed failed_routes.json]",
	Short: "Crawls flight offers for a range of routes and writes the JSON artifacts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := logger.WithRunID(cmd.Context(), uuid.NewString())

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		req := dto.CrawlRequest{
			CrawlingDate:     crawlFlags.date,
			From:             crawlFlags.from,
			Tag:              crawlFlags.tag,
			FailedRoutesFile: crawlFlags.retryFailed,
		}
		if crawlFlags.to >= 0 {
			req.To = &crawlFlags.to
		}

		summary, crawlErr := a.runService.Execute(ctx, req)

		if summary.Routes > 0 || crawlErr == nil {
			printSummary(summary)
		}

		if cfg.Metrics.Textfile != "" {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile, a.registry); err != nil {
				slog.WarnContext(ctx, "failed to write metrics textfile", slog.String("error", err.Error()))
			}
		}

		if crawlErr != nil {
			return fmt.Errorf("crawl: %w", crawlErr)
		}

		return nil
	},
}

func printSummary(summary dto.CrawlSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Crawl date", "Routes", "Success", "No data", "Failed", "Offers", "API calls", "Cache hits", "Elapsed"})
	t.AppendRow(table.Row{
		summary.CrawlingDate,
		fmt.Sprintf("%d/%d", summary.Routes, summary.To-summary.From),
		strconv.Itoa(summary.Succeeded),
		strconv.Itoa(summary.NoData),
		strconv.Itoa(summary.Failed),
		strconv.Itoa(summary.Offers),
		strconv.Itoa(summary.APICalls),
		strconv.Itoa(summary.CacheHits),
		summary.Elapsed().Round(time.Millisecond).String(),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
