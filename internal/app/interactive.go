package app

import (
	"context"
	"fmt"
	"strings"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/export"
	"mirror-scraper/internal/prompt"
)

// AskRunConfig copies base and fills in pages, output type, filename and the
// rerun choice from the user. An unknown output type returns export.ErrUnknownFormat;
// end of input or cancellation returns prompt.ErrInterrupted.
func AskRunConfig(ctx context.Context, base *config.Config, p *prompt.Prompter) (*config.Config, error) {
	cfg := *base
	cfg.Schema.Columns = append([]string(nil), base.Schema.Columns...)

	pages, err := p.AskInt(ctx, "Enter the number of pages to scrape: ")
	if err != nil {
		return nil, err
	}
	cfg.Pagination.Pages = pages

	answer, err := p.Ask(ctx, "Select the output type (CSV, TXT, XML, SQL): ")
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(answer)
	if err != nil {
		return nil, err
	}
	cfg.Export.Format = string(format)

	label := strings.ToUpper(string(format))
	if format == export.FormatSQL {
		label = "SQLite"
	}
	filename, err := p.Ask(ctx, fmt.Sprintf("Enter the %s filename: ", label))
	if err != nil {
		return nil, err
	}
	cfg.Export.Output = filename
	if filename == "" {
		cfg.Export.Output = format.DefaultOutput()
	}

	rerun, err := p.Confirm(ctx, "Would you like to rerun the script after a specified time? (y/n): ")
	if err != nil {
		return nil, err
	}
	if rerun {
		interval, err := p.AskInt(ctx, "Enter the time interval in seconds: ")
		if err != nil {
			return nil, err
		}
		cfg.Scheduler.Mode = "interval"
		cfg.Scheduler.IntervalS = interval
	} else {
		cfg.Scheduler.Mode = "oneshot"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid answers: %w", err)
	}
	return &cfg, nil
}
