package export

import (
	"context"
	"fmt"
	"time"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/dataset"
	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/storage"
	"mirror-scraper/internal/storage/sqldb"
)

// Opener returns a repository for the given options; tests swap it out.
type Opener func(ctx context.Context, opts sqldb.Options, logger *observability.Logger) (storage.Repository, error)

func openSQL(ctx context.Context, opts sqldb.Options, logger *observability.Logger) (storage.Repository, error) {
	return sqldb.Open(ctx, opts, logger)
}

// SQLExporter stores the dataset in a relational table. For SQLite the
// destination is the database file; other drivers use storage.dsn.
type SQLExporter struct {
	cfg            config.StorageConfig
	commandTimeout time.Duration
	logger         *observability.Logger
	open           Opener
}

func NewSQLExporter(cfg config.StorageConfig, commandTimeout time.Duration, logger *observability.Logger) *SQLExporter {
	return &SQLExporter{
		cfg:            cfg,
		commandTimeout: commandTimeout,
		logger:         logger,
		open:           openSQL,
	}
}

func (e *SQLExporter) Export(ctx context.Context, ds *dataset.Dataset, dest string) error {
	// nothing is opened or created for a batch that cannot be stored
	if err := storage.CheckRows(ds.Header, ds.Header, ds.Rows); err != nil {
		return err
	}

	dsn := e.cfg.DSN
	if e.cfg.Driver == "sqlite" || e.cfg.Driver == "sqlite3" {
		dsn = dest
	}

	repo, err := e.open(ctx, sqldb.Options{
		Driver:         e.cfg.Driver,
		DSN:            dsn,
		Table:          e.cfg.Table,
		Columns:        ds.Header,
		CommandTimeout: e.commandTimeout,
		BatchSize:      e.cfg.BatchSize,
		Replace:        e.cfg.Replace,
	}, e.logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			e.logger.Error("Failed to close storage", "error", err.Error())
		}
	}()

	n, err := repo.SaveRows(ctx, ds.Header, ds.Rows)
	if err != nil {
		return fmt.Errorf("failed to save rows: %w", err)
	}

	e.logger.Info("Rows stored",
		"driver", e.cfg.Driver,
		"table", e.cfg.Table,
		"rows", n,
	)
	return nil
}
