package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"mirror-scraper/internal/checksum"
	"mirror-scraper/internal/config"
	"mirror-scraper/internal/console"
	"mirror-scraper/internal/dataset"
	"mirror-scraper/internal/export"
	"mirror-scraper/internal/fetcher"
	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/scraper"
)

type Orchestrator struct {
	cfg      *config.Config
	logger   *observability.Logger
	fetcher  fetcher.PageFetcher
	scraper  *scraper.Scraper
	checksum *checksum.Generator
	out      io.Writer

	lastChecksum string
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	f fetcher.PageFetcher,
	s *scraper.Scraper,
	out io.Writer,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		fetcher:  f,
		scraper:  s,
		checksum: checksum.NewGenerator(),
		out:      out,
	}
}

type RunStats struct {
	RunID          string
	PagesRequested int
	PagesFetched   int
	PagesFailed    int
	Rows           int
	Mismatched     int
	Checksum       string
	Exported       bool
	Skipped        bool
	Format         string
	Output         string
}

// Collect fetches every configured page and aggregates the rows in page order.
// A page that cannot be fetched counts as zero rows. A page without the
// listing table stops the run.
func (o *Orchestrator) Collect(ctx context.Context) (*dataset.Dataset, *RunStats, error) {
	stats := &RunStats{RunID: uuid.NewString()}
	ds, err := o.collect(ctx, o.logger.With("run_id", stats.RunID), stats)
	return ds, stats, err
}

func (o *Orchestrator) collect(ctx context.Context, logger *observability.Logger, stats *RunStats) (*dataset.Dataset, error) {
	agg := dataset.NewAggregator(o.cfg.Schema.Columns)
	first := o.cfg.Pagination.StartPage
	last := first + o.cfg.Pagination.Pages - 1
	stats.PagesRequested = o.cfg.Pagination.Pages

	logger.Info("Starting collection",
		"base_url", o.cfg.Source.BaseURL,
		"country", o.cfg.Source.Country,
		"first_page", first,
		"last_page", last,
	)

	for page := first; page <= last; page++ {
		url := o.cfg.PageURL(page)

		resp, err := o.fetcher.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			stats.PagesFailed++
			logger.Error("Failed to fetch the website content", "page", page, "url", url, "error", err.Error())
			agg.Add(page, nil)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			stats.PagesFailed++
			logger.Error("Failed to fetch the website content", "page", page, "url", url, "status", resp.StatusCode)
			agg.Add(page, nil)
			continue
		}
		stats.PagesFetched++

		table, err := o.scraper.ExtractTable(resp.Body)
		if err != nil {
			logger.Error("Extract failed", "page", page, "url", url, "error", err.Error())
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		if agg.ObserveHeader(page, table.Header) {
			logger.Warn("Page header differs from configured columns",
				"page", page,
				"detected", table.Header,
				"configured", o.cfg.Schema.Columns,
			)
		}

		agg.Add(page, table.Rows)
		logger.Info("Page processed", "page", page, "rows", len(table.Rows))
	}

	if o.cfg.Schema.Strict {
		if err := agg.CheckStrict(); err != nil {
			return nil, err
		}
	}

	ds, err := agg.Dataset()
	if err != nil {
		return nil, err
	}

	stats.Rows = ds.Len()
	stats.Mismatched = len(ds.Mismatched())
	if stats.Mismatched > 0 {
		logger.Warn("Rows do not match the header length",
			"mismatched", stats.Mismatched,
			"rows", stats.Rows,
			"columns", len(ds.Header),
		)
	}

	logger.Info("Collection completed",
		"pages_fetched", stats.PagesFetched,
		"pages_failed", stats.PagesFailed,
		"rows", stats.Rows,
	)
	return ds, nil
}

// Run performs one full pass: collect, preview, export.
// No data and an unknown output type are reported on out and are not errors.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{RunID: uuid.NewString(), Format: o.cfg.Export.Format}
	logger := o.logger.With("run_id", stats.RunID)

	ds, err := o.collect(ctx, logger, stats)
	if errors.Is(err, dataset.ErrNoData) {
		fmt.Fprintln(o.out, "No data found on the webpage.")
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	if o.cfg.Preview.Enabled {
		console.RenderTable(o.out, ds.Header, ds.Rows, o.cfg.Preview.MaxRows)
	}

	stats.Checksum = o.checksum.GenerateDatasetHash(ds)
	if o.cfg.Scheduler.SkipUnchanged && stats.Checksum == o.lastChecksum {
		stats.Skipped = true
		logger.Info("Dataset unchanged, export skipped", "checksum", stats.Checksum)
		return stats, nil
	}

	format, err := export.ParseFormat(o.cfg.Export.Format)
	if err != nil {
		logger.Warn("Unknown output type", "format", o.cfg.Export.Format)
		fmt.Fprintln(o.out, "Invalid output type.")
		return stats, nil
	}

	exporter, err := export.New(format, o.cfg, logger)
	if err != nil {
		return stats, err
	}

	stats.Output = o.cfg.Export.Output
	if stats.Output == "" {
		stats.Output = format.DefaultOutput()
	}

	if err := exporter.Export(ctx, ds, stats.Output); err != nil {
		return stats, fmt.Errorf("export %s: %w", format, err)
	}

	stats.Exported = true
	o.lastChecksum = stats.Checksum
	logger.Info("Export completed",
		"format", string(format),
		"output", stats.Output,
		"rows", stats.Rows,
		"checksum", stats.Checksum,
	)
	fmt.Fprintf(o.out, "Data saved to %s\n", stats.Output)
	return stats, nil
}
