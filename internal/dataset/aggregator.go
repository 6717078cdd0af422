package dataset

import (
	"fmt"
	"slices"
	"strings"
)

// HeaderDrift records a page whose table header disagrees with the configured columns.
type HeaderDrift struct {
	Page     int
	Detected []string
}

// Aggregator concatenates per-page rows in the order pages are added.
type Aggregator struct {
	header []string
	rows   []Row
	pages  int
	drift  []HeaderDrift
}

func NewAggregator(header []string) *Aggregator {
	return &Aggregator{header: append([]string(nil), header...)}
}

func (a *Aggregator) Add(page int, rows []Row) {
	a.pages++
	a.rows = append(a.rows, rows...)
}

// ObserveHeader compares a detected page header with the configured one, case-insensitively.
// It returns true when they differ. Empty headers are ignored.
func (a *Aggregator) ObserveHeader(page int, detected []string) bool {
	if len(detected) == 0 {
		return false
	}
	if slices.EqualFunc(a.header, detected, strings.EqualFold) {
		return false
	}
	a.drift = append(a.drift, HeaderDrift{Page: page, Detected: detected})
	return true
}

func (a *Aggregator) Drift() []HeaderDrift {
	return a.drift
}

func (a *Aggregator) Pages() int {
	return a.pages
}

func (a *Aggregator) Empty() bool {
	return len(a.rows) == 0
}

// Dataset returns the aggregated rows, or ErrNoData when there are none.
func (a *Aggregator) Dataset() (*Dataset, error) {
	if a.Empty() {
		return nil, ErrNoData
	}
	return &Dataset{Header: a.header, Rows: a.rows}, nil
}

// CheckStrict fails when any row length or detected header disagrees with the configured columns.
func (a *Aggregator) CheckStrict() error {
	if len(a.drift) > 0 {
		d := a.drift[0]
		return fmt.Errorf("%w: page %d header %v", ErrSchemaDrift, d.Page, d.Detected)
	}
	ds := Dataset{Header: a.header, Rows: a.rows}
	if bad := ds.Mismatched(); len(bad) > 0 {
		return fmt.Errorf("%w: %d of %d rows have a field count other than %d", ErrSchemaDrift, len(bad), len(a.rows), len(a.header))
	}
	return nil
}
