package dataset

import (
	"errors"
	"slices"
)

var (
	// ErrNoData is returned when no page produced a single row.
	ErrNoData = errors.New("no data found")
	// ErrSchemaDrift is returned in strict mode when rows or the page header disagree with the configured columns.
	ErrSchemaDrift = errors.New("scraped rows do not match the configured columns")
)

type Row = []string

// Dataset is the header plus every scraped row, in page order.
type Dataset struct {
	Header []string
	Rows   []Row
}

// Records returns the header as row zero followed by the data rows.
func (d *Dataset) Records() [][]string {
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Header)
	return append(out, d.Rows...)
}

// Mismatched lists indexes of rows whose length differs from the header.
func (d *Dataset) Mismatched() []int {
	var idx []int
	for i, row := range d.Rows {
		if len(row) != len(d.Header) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

// SameHeader reports whether other lists exactly the header names in the same order.
func (d *Dataset) SameHeader(other []string) bool {
	return slices.Equal(d.Header, other)
}
