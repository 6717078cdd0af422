package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/observability"
)

// RodFetcher renders pages in headless Chrome for listings that build the table with JavaScript.
type RodFetcher struct {
	cfg     *config.Config
	logger  *observability.Logger
	browser *rod.Browser
}

func NewRodFetcher(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*RodFetcher, error) {
	l := launcher.New().Context(ctx).Headless(true)
	if cfg.Rod.ChromePath != "" {
		l = l.Bin(cfg.Rod.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	logger.Info("Browser started", "control_url", controlURL)

	return &RodFetcher{
		cfg:     cfg,
		logger:  logger,
		browser: browser,
	}, nil
}

func (f *RodFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	page, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			f.logger.Warn("Failed to close page", "error", err.Error())
		}
	}()

	p := page.Timeout(f.cfg.GetRodPageTimeout())

	status := http.StatusOK
	finalURL := urlStr
	waitDocument := p.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		finalURL = e.Response.URL
		return true
	})

	if err := p.Navigate(urlStr); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	waitDocument()

	if err := p.Timeout(f.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		f.logger.Warn("Page did not finish loading, continuing", "url", urlStr, "error", err.Error())
	}

	if delay := f.cfg.GetRodLazyLoadDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}

	return &FetchResponse{
		StatusCode: status,
		Body:       []byte(html),
		URL:        finalURL,
	}, nil
}

func (f *RodFetcher) Close() error {
	return f.browser.Close()
}
