package app

import (
	"context"
	"fmt"
	"io"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/fetcher"
	"mirror-scraper/internal/normalize"
	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/scraper"
)

// Build wires the fetcher, scraper and orchestrator for cfg.
// Selector files are resolved relative to configDir. The caller closes the fetcher.
func Build(ctx context.Context, cfg *config.Config, configDir string, logger *observability.Logger, out io.Writer) (*Orchestrator, fetcher.PageFetcher, error) {
	selectors, err := cfg.ResolveSelectors(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load selectors: %w", err)
	}

	f, err := fetcher.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	s := scraper.NewScraper(selectors, normalize.NewNormalizer(cfg.Normalize))
	return NewOrchestrator(cfg, logger, f, s, out), f, nil
}
