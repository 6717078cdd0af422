package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/dataset"
	"mirror-scraper/internal/fetcher"
	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/scraper"
)

var testColumns = []string{"Date", "Hacker", "Mirror"}

func page(rows ...string) string {
	return `<html><body><table class="mirror-table table-mr table-responsive">
<tr><th>Date</th><th>Hacker</th><th>Mirror</th></tr>` + strings.Join(rows, "\n") + `</table></body></html>`
}

func row(cells ...string) string {
	return "<tr><td>" + strings.Join(cells, "</td><td>") + "</td></tr>"
}

// newSite serves pages keyed by page number; unknown pages return 404.
func newSite(t *testing.T, pages map[int]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for n, body := range pages {
			if r.URL.Path == fmt.Sprintf("/country/AU/page=%d", n) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				fmt.Fprint(w, body)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	cfg  *config.Config
	orch *Orchestrator
	out  *bytes.Buffer
	logs *bytes.Buffer
}

func newHarness(t *testing.T, srv *httptest.Server, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Source.BaseURL = srv.URL
	cfg.Schema.Columns = testColumns
	cfg.Preview.Enabled = false
	cfg.Export.Output = filepath.Join(t.TempDir(), "out.csv")
	if mutate != nil {
		mutate(cfg)
	}

	var out, logs bytes.Buffer
	logger := observability.NewLoggerWithWriter(&logs, "info")
	orch := NewOrchestrator(cfg, logger, fetcher.NewFetcher(cfg, logger), scraper.NewScraper(nil, nil), &out)
	return &harness{cfg: cfg, orch: orch, out: &out, logs: &logs}
}

func TestRunWritesCSV(t *testing.T) {
	srv := newSite(t, map[int]string{
		1: page(row("2024-01-01", "alice", "https://m/1")),
		2: page(row("2024-01-02", "bob", "https://m/2")),
	})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Pagination.Pages = 2 })

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, stats.Exported)
	require.Equal(t, 2, stats.Rows)
	require.Equal(t, 2, stats.PagesFetched)
	require.NotEmpty(t, stats.RunID)

	got, err := os.ReadFile(h.cfg.Export.Output)
	require.NoError(t, err)
	require.Equal(t, "Date,Hacker,Mirror\n2024-01-01,alice,https://m/1\n2024-01-02,bob,https://m/2\n", string(got))
	require.Contains(t, h.out.String(), "Data saved to "+h.cfg.Export.Output)
}

func TestRunFailedPageLogsOnceAndContinues(t *testing.T) {
	srv := newSite(t, map[int]string{
		2: page(row("2024-01-02", "bob", "https://m/2")),
	})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Pagination.Pages = 2 })

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.PagesFailed)
	require.Equal(t, 1, stats.Rows)
	require.Equal(t, 1, strings.Count(h.logs.String(), "Failed to fetch the website content"))
	require.Contains(t, h.logs.String(), "status=404")

	got, err := os.ReadFile(h.cfg.Export.Output)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(got), "\n"))
}

func TestRunNoData(t *testing.T) {
	srv := newSite(t, map[int]string{1: page()})
	h := newHarness(t, srv, nil)

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.False(t, stats.Exported)
	require.Contains(t, h.out.String(), "No data found on the webpage.")
	require.NoFileExists(t, h.cfg.Export.Output)
}

func TestRunAllPagesFailed(t *testing.T) {
	srv := newSite(t, nil)
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Pagination.Pages = 3 })

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.PagesFailed)
	require.Contains(t, h.out.String(), "No data found on the webpage.")
}

func TestRunMissingTable(t *testing.T) {
	srv := newSite(t, map[int]string{1: "<html><body><p>maintenance</p></body></html>"})
	h := newHarness(t, srv, nil)

	_, err := h.orch.Run(context.Background())
	require.ErrorIs(t, err, scraper.ErrTableNotFound)
	require.NoFileExists(t, h.cfg.Export.Output)
}

func TestRunUnknownFormat(t *testing.T) {
	srv := newSite(t, map[int]string{1: page(row("2024-01-01", "alice", "https://m/1"))})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Export.Format = "json" })

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.False(t, stats.Exported)
	require.Contains(t, h.out.String(), "Invalid output type.")
	require.NoFileExists(t, h.cfg.Export.Output)
}

func TestRunSkipUnchanged(t *testing.T) {
	srv := newSite(t, map[int]string{1: page(row("2024-01-01", "alice", "https://m/1"))})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Scheduler.SkipUnchanged = true })

	first, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, first.Exported)

	second, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, second.Skipped)
	require.Equal(t, first.Checksum, second.Checksum)
}

func TestRunStrictRejectsShortRows(t *testing.T) {
	srv := newSite(t, map[int]string{1: page(row("2024-01-01", "alice"))})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Schema.Strict = true })

	_, err := h.orch.Run(context.Background())
	require.ErrorIs(t, err, dataset.ErrSchemaDrift)
}

func TestRunWarnsOnHeaderDrift(t *testing.T) {
	body := `<table class="mirror-table table-mr table-responsive">
<tr><th>When</th><th>Who</th><th>Where</th></tr>` + row("a", "b", "c") + `</table>`
	srv := newSite(t, map[int]string{1: body})
	h := newHarness(t, srv, nil)

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, stats.Exported)
	require.Contains(t, h.logs.String(), "Page header differs from configured columns")
}

func TestRunPreview(t *testing.T) {
	srv := newSite(t, map[int]string{1: page(row("2024-01-01", "alice", "https://m/1"))})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Preview.Enabled = true })

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.Contains(t, h.out.String(), "alice")
	require.Contains(t, h.out.String(), "HACKER")
}

func TestRunSQL(t *testing.T) {
	srv := newSite(t, map[int]string{1: page(row("2024-01-01", "alice", "https://m/1"))})
	h := newHarness(t, srv, func(cfg *config.Config) {
		cfg.Export.Format = "SQL"
		cfg.Export.Output = filepath.Join(t.TempDir(), "out.db")
	})

	stats, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, stats.Exported)
	require.FileExists(t, h.cfg.Export.Output)
}

func TestCollect(t *testing.T) {
	srv := newSite(t, map[int]string{
		3: page(row("a", "b", "c"), row("d", "e")),
	})
	h := newHarness(t, srv, func(cfg *config.Config) { cfg.Pagination.StartPage = 3 })

	ds, stats, err := h.orch.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, testColumns, ds.Header)
	require.Equal(t, 2, stats.Rows)
	require.Equal(t, 1, stats.Mismatched)
}

func TestCollectCancelled(t *testing.T) {
	srv := newSite(t, map[int]string{1: page(row("a", "b", "c"))})
	h := newHarness(t, srv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := h.orch.Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
