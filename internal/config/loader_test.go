package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, t.TempDir(), "config.yaml", `
pagination:
  pages: 3
export:
  format: xml
  output: out.xml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Pagination.Pages)
	require.Equal(t, 1, cfg.Pagination.StartPage)
	require.Equal(t, "xml", cfg.Export.Format)
	require.Equal(t, "https://zone-xsec.com", cfg.Source.BaseURL)
	require.Equal(t, DefaultColumns, cfg.Schema.Columns)
	require.Equal(t, "scraped_data", cfg.Storage.Table)
	require.True(t, cfg.Storage.Replace)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, t.TempDir(), "config.yaml", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "oneshot", cfg.Scheduler.Mode)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MIRROR_PAGES", "7")
	t.Setenv("MIRROR_FORMAT", "sql")
	t.Setenv("MIRROR_COUNTRY", "NZ")
	path := writeFile(t, t.TempDir(), "config.yaml", "pagination:\n  pages: 2\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Pagination.Pages)
	require.Equal(t, "sql", cfg.Export.Format)
	require.Equal(t, "https://zone-xsec.com/country/NZ/page=4", cfg.PageURL(4))
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "MIRROR_OUTPUT=from-dotenv.csv\n")
	t.Setenv("MIRROR_OUTPUT", "")
	os.Unsetenv("MIRROR_OUTPUT")

	cfg, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv.csv", cfg.Export.Output)
}

func TestLoadConfigBadEnvNumber(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MIRROR_PAGES", "three")

	_, err := LoadDefault()
	require.ErrorContains(t, err, "MIRROR_PAGES")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSelectors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "selectors.yaml", "table: table.listing\n")

	sel, err := LoadSelectors(path)
	require.NoError(t, err)
	require.Equal(t, "table.listing", sel.Table)
	require.Equal(t, "tr", sel.Row)
	require.Equal(t, "td", sel.Cell)

	_, err = LoadSelectors(writeFile(t, dir, "bad.yaml", "table: \"\"\n"))
	require.ErrorContains(t, err, "table is required")
}

func TestResolveSelectorsFallsBack(t *testing.T) {
	cfg := Default()
	sel, err := cfg.ResolveSelectors(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "table.mirror-table.table-mr.table-responsive", sel.Table)
}
