package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrTableNotFound means the page has no element matching the table selector.
var ErrTableNotFound = errors.New("listing table not found")

// CellNormalizer cleans up the raw text of a cell.
type CellNormalizer interface {
	Cell(text string) string
}

type trimNormalizer struct{}

func (trimNormalizer) Cell(text string) string { return strings.TrimSpace(text) }

type Scraper struct {
	selectors  *Selectors
	normalizer CellNormalizer
}

// NewScraper falls back to plain whitespace trimming when normalizer is nil.
func NewScraper(selectors *Selectors, normalizer CellNormalizer) *Scraper {
	if selectors == nil {
		selectors = DefaultSelectors()
	}
	if normalizer == nil {
		normalizer = trimNormalizer{}
	}
	return &Scraper{
		selectors:  selectors,
		normalizer: normalizer,
	}
}

// ExtractTable finds the first listing table and returns its rows.
// Rows without data cells are treated as header rows and produce no Row.
func (s *Scraper) ExtractTable(html []byte) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find(s.selectors.Table).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: selector %q", ErrTableNotFound, s.selectors.Table)
	}

	result := &Table{}
	table.Find(s.selectors.Row).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find(s.selectors.Cell)
		if cells.Length() == 0 {
			if result.Header == nil && s.selectors.HeaderCell != "" {
				result.Header = s.texts(tr.Find(s.selectors.HeaderCell))
			}
			return
		}
		result.Rows = append(result.Rows, s.texts(cells))
	})

	return result, nil
}

func (s *Scraper) texts(sel *goquery.Selection) []string {
	if sel.Length() == 0 {
		return nil
	}
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, s.normalizer.Cell(cell.Text()))
	})
	return out
}
