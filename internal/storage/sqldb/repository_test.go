package sqldb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/storage"
)

var testColumns = []string{"Date", "Hacker", "Mirror"}

func openTemp(t *testing.T, opts Options) *Repository {
	t.Helper()
	if opts.Driver == "" {
		opts.Driver = "sqlite"
	}
	if opts.DSN == "" {
		opts.DSN = filepath.Join(t.TempDir(), "out.db")
	}
	if opts.Table == "" {
		opts.Table = "scraped_data"
	}
	if opts.Columns == nil {
		opts.Columns = testColumns
	}
	repo, err := Open(context.Background(), opts, observability.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndReadPreservesOrder(t *testing.T) {
	repo := openTemp(t, Options{Replace: true})
	ctx := context.Background()

	rows := [][]string{
		{"2024-01-01", "alice", "https://m/1"},
		{"2024-01-02", "bob", "https://m/2"},
		{"2024-01-03", "carol", "https://m/3"},
	}
	n, err := repo.SaveRows(ctx, testColumns, rows)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got, err := repo.ReadRows(ctx)
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestCountRowsMissingTable(t *testing.T) {
	repo := openTemp(t, Options{})
	n, err := repo.CountRows(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSaveRowsReplace(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "out.db")
	ctx := context.Background()
	first := [][]string{{"a", "b", "c"}, {"d", "e", "f"}}
	second := [][]string{{"x", "y", "z"}}

	repo := openTemp(t, Options{DSN: dsn, Replace: true})
	_, err := repo.SaveRows(ctx, testColumns, first)
	require.NoError(t, err)
	_, err = repo.SaveRows(ctx, testColumns, second)
	require.NoError(t, err)

	got, err := repo.ReadRows(ctx)
	require.NoError(t, err)
	require.Equal(t, second, got)

	appendRepo := openTemp(t, Options{DSN: dsn, Replace: false})
	_, err = appendRepo.SaveRows(ctx, testColumns, first)
	require.NoError(t, err)

	n, err := appendRepo.CountRows(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestSaveRowsMismatchLeavesTableUntouched(t *testing.T) {
	repo := openTemp(t, Options{Replace: true})
	ctx := context.Background()

	before := [][]string{{"a", "b", "c"}}
	_, err := repo.SaveRows(ctx, testColumns, before)
	require.NoError(t, err)

	_, err = repo.SaveRows(ctx, testColumns, [][]string{{"x", "y", "z"}, {"short"}})
	require.ErrorIs(t, err, storage.ErrSchemaMismatch)

	got, err := repo.ReadRows(ctx)
	require.NoError(t, err)
	require.Equal(t, before, got)
}

func TestSaveRowsSplitsBatches(t *testing.T) {
	repo := openTemp(t, Options{BatchSize: 2, Replace: true})
	ctx := context.Background()

	var rows [][]string
	for i := 0; i < 7; i++ {
		rows = append(rows, []string{fmt.Sprintf("d%d", i), fmt.Sprintf("h%d", i), fmt.Sprintf("m%d", i)})
	}
	n, err := repo.SaveRows(ctx, testColumns, rows)
	require.NoError(t, err)
	require.Equal(t, 7, n)

	got, err := repo.ReadRows(ctx)
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestSaveRowsEmptyCreatesTable(t *testing.T) {
	repo := openTemp(t, Options{Replace: true})
	ctx := context.Background()

	n, err := repo.SaveRows(ctx, testColumns, nil)
	require.NoError(t, err)
	require.Zero(t, n)

	got, err := repo.ReadRows(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", Table: "t", Columns: testColumns}, observability.NewNopLogger())
	require.ErrorContains(t, err, "unsupported storage driver: oracle")
}

func TestDialectStatements(t *testing.T) {
	tests := []struct {
		driver     string
		wantCreate string
		wantInsert string
	}{
		{
			driver:     "sqlite3",
			wantCreate: `CREATE TABLE IF NOT EXISTS "scraped_data" ("Date" TEXT, "M" TEXT)`,
			wantInsert: `INSERT INTO "scraped_data" ("Date", "M") VALUES (?, ?), (?, ?)`,
		},
		{
			driver:     "postgresql",
			wantCreate: `CREATE TABLE IF NOT EXISTS "scraped_data" ("Date" TEXT, "M" TEXT)`,
			wantInsert: `INSERT INTO "scraped_data" ("Date", "M") VALUES (?, ?), (?, ?)`,
		},
		{
			driver:     "mssql",
			wantCreate: `IF OBJECT_ID(N'scraped_data', N'U') IS NULL CREATE TABLE [scraped_data] ([Date] NVARCHAR(MAX), [M] NVARCHAR(MAX))`,
			wantInsert: `INSERT INTO [scraped_data] ([Date], [M]) VALUES (?, ?), (?, ?)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := dialectFor(tt.driver)
			require.NoError(t, err)
			require.Equal(t, tt.wantCreate, d.createTable("scraped_data", []string{"Date", "M"}))
			require.Equal(t, tt.wantInsert, d.insertBatch("scraped_data", []string{"Date", "M"}, 2))
		})
	}
}

func TestBatchRowsRespectsParameterLimit(t *testing.T) {
	d, err := dialectFor("sqlserver")
	require.NoError(t, err)
	require.Equal(t, 210, d.batchRows(1000, 10))
	require.Equal(t, 100, d.batchRows(100, 10))
}
