package export

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"mirror-scraper/internal/dataset"
	"mirror-scraper/internal/observability"
)

// XMLExporter writes <Root><Item><Header[i]>cell</Header[i]>...</Item>...</Root>.
// Rows whose length differs from the header are skipped.
type XMLExporter struct {
	Root   string
	Item   string
	Indent bool
	logger *observability.Logger
}

func (e *XMLExporter) Export(ctx context.Context, ds *dataset.Dataset, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if err := e.Write(file, ds); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (e *XMLExporter) Write(w io.Writer, ds *dataset.Dataset) error {
	bw := bufio.NewWriter(w)
	enc := xml.NewEncoder(bw)
	if e.Indent {
		enc.Indent("", "  ")
	}

	root := xml.StartElement{Name: xml.Name{Local: e.Root}}
	item := xml.StartElement{Name: xml.Name{Local: e.Item}}

	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("failed to encode root: %w", err)
	}

	skipped := 0
	for _, row := range ds.Rows {
		if len(row) != len(ds.Header) {
			skipped++
			continue
		}
		if err := e.encodeRow(enc, item, ds.Header, row); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("failed to encode root: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	if skipped > 0 && e.logger != nil {
		e.logger.Warn("Skipped rows with wrong field count",
			"skipped", skipped,
			"columns", len(ds.Header),
		)
	}
	return nil
}

func (e *XMLExporter) encodeRow(enc *xml.Encoder, item xml.StartElement, header, row []string) error {
	if err := enc.EncodeToken(item); err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}
	for i, name := range header {
		el := xml.StartElement{Name: xml.Name{Local: name}}
		if err := enc.EncodeToken(el); err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := enc.EncodeToken(xml.CharData(row[i])); err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := enc.EncodeToken(el.End()); err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
	}
	return enc.EncodeToken(item.End())
}
