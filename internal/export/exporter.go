package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/dataset"
	"mirror-scraper/internal/observability"
)

// ErrUnknownFormat is returned for an output type other than csv, txt, xml or sql.
var ErrUnknownFormat = errors.New("invalid output type")

type Format string

const (
	FormatCSV Format = "csv"
	FormatTXT Format = "txt"
	FormatXML Format = "xml"
	FormatSQL Format = "sql"
)

// Exporter serializes a dataset to dest, creating or overwriting it.
type Exporter interface {
	Export(ctx context.Context, ds *dataset.Dataset, dest string) error
}

// ParseFormat matches an output type name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "txt", "tsv":
		return FormatTXT, nil
	case "xml":
		return FormatXML, nil
	case "sql", "sqlite":
		return FormatSQL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DefaultOutput is used when export.output is empty.
func (f Format) DefaultOutput() string {
	if f == FormatSQL {
		return "scraped_data.db"
	}
	return "scraped_data." + string(f)
}

func New(format Format, cfg *config.Config, logger *observability.Logger) (Exporter, error) {
	rfc := cfg.Export.Quoting == "rfc4180"

	switch format {
	case FormatCSV:
		return &DelimitedExporter{Delimiter: ',', RFC4180: rfc, logger: logger}, nil
	case FormatTXT:
		return &DelimitedExporter{Delimiter: '\t', RFC4180: rfc, logger: logger}, nil
	case FormatXML:
		return &XMLExporter{
			Root:   cfg.Export.XMLRoot,
			Item:   cfg.Export.XMLItem,
			Indent: cfg.Export.XMLIndent,
			logger: logger,
		}, nil
	case FormatSQL:
		return NewSQLExporter(cfg.Storage, cfg.GetCommandTimeout(), logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
