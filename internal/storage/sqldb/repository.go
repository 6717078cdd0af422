package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/storage"
)

type Options struct {
	Driver         string
	DSN            string
	Table          string
	Columns        []string
	CommandTimeout time.Duration
	BatchSize      int
	Replace        bool // delete previous rows in the same transaction as the insert
}

type Repository struct {
	db             *sqlx.DB
	dialect        *dialect
	table          string
	columns        []string
	commandTimeout time.Duration
	batchSize      int
	replace        bool
	logger         *observability.Logger
}

var _ storage.Repository = (*Repository)(nil)

func Open(ctx context.Context, opts Options, logger *observability.Logger) (*Repository, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	if len(opts.Columns) == 0 {
		return nil, fmt.Errorf("no columns configured for table %s", opts.Table)
	}

	db, err := sqlx.Open(d.driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	timeout := opts.CommandTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Repository{
		db:             db,
		dialect:        d,
		table:          opts.Table,
		columns:        append([]string(nil), opts.Columns...),
		commandTimeout: timeout,
		batchSize:      d.batchRows(batch, len(opts.Columns)),
		replace:        opts.Replace,
		logger:         logger,
	}, nil
}

// SaveRows creates the table if needed and inserts rows in a single transaction.
func (r *Repository) SaveRows(ctx context.Context, header []string, rows [][]string) (n int, err error) {
	if err := storage.CheckRows(r.columns, header, rows); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to roll back", "table", r.table, "error", rbErr.Error())
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, r.dialect.createTable(r.table, r.columns)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", r.table, err)
	}

	if r.replace {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+r.dialect.quote(r.table)); err != nil {
			return 0, fmt.Errorf("failed to clear table %s: %w", r.table, err)
		}
	}

	for start := 0; start < len(rows); start += r.batchSize {
		end := min(start+r.batchSize, len(rows))
		batch := rows[start:end]

		args := make([]interface{}, 0, len(batch)*len(r.columns))
		for _, row := range batch {
			for _, v := range row {
				args = append(args, v)
			}
		}

		query := tx.Rebind(r.dialect.insertBatch(r.table, r.columns, len(batch)))
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to insert rows %d-%d: %w", start, end-1, err)
		}
		r.logger.Debug("Inserted batch", "table", r.table, "from", start, "rows", len(batch))
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return len(rows), nil
}

func (r *Repository) ReadRows(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryxContext(ctx, r.dialect.selectAll(r.table, r.columns))
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err.Error())
		}
	}()

	var out [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(r.columns))
		dest := make([]interface{}, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (r *Repository) CountRows(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(r.dialect.existsSQL), r.table); err != nil {
		return 0, fmt.Errorf("failed to check table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+r.dialect.quote(r.table)); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
