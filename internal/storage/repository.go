package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrSchemaMismatch means the rows cannot be stored in the table as declared.
var ErrSchemaMismatch = errors.New("rows do not match table schema")

// Repository persists scraped rows into a fixed-column table.
type Repository interface {
	// SaveRows stores all rows or none. header must list the table columns in order.
	SaveRows(ctx context.Context, header []string, rows [][]string) (int, error)

	// ReadRows returns stored rows in insertion order where the driver can tell.
	ReadRows(ctx context.Context) ([][]string, error)

	// CountRows returns the number of stored rows, 0 when the table does not exist yet.
	CountRows(ctx context.Context) (int, error)

	Close() error
}

// CheckRows validates header and row widths against columns before anything is written.
func CheckRows(columns, header []string, rows [][]string) error {
	if !slices.Equal(columns, header) {
		return fmt.Errorf("%w: header %v differs from columns %v", ErrSchemaMismatch, header, columns)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("%w: row %d has %d fields, table has %d columns", ErrSchemaMismatch, i, len(row), len(columns))
		}
	}
	return nil
}
