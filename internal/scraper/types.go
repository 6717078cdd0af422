package scraper

// Row is one table row: trimmed cell texts in document order.
type Row = []string

// Table is what a single listing page yields.
type Table struct {
	Header []string // texts of the first header-only row, empty when the table has none
	Rows   []Row
}

type Selectors struct {
	Table      string `yaml:"table"`
	Row        string `yaml:"row"`
	Cell       string `yaml:"cell"`
	HeaderCell string `yaml:"header_cell"`
}

func DefaultSelectors() *Selectors {
	return &Selectors{
		Table:      "table.mirror-table.table-mr.table-responsive",
		Row:        "tr",
		Cell:       "td",
		HeaderCell: "th",
	}
}
