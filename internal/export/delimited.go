package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"mirror-scraper/internal/dataset"
	"mirror-scraper/internal/normalize"
	"mirror-scraper/internal/observability"
)

// DelimitedExporter writes one line per record joined by Delimiter.
// Without RFC4180 values are written verbatim, so a value holding the
// delimiter or a newline shifts columns for any reader.
type DelimitedExporter struct {
	Delimiter rune
	RFC4180   bool
	logger    *observability.Logger
}

func (e *DelimitedExporter) Export(ctx context.Context, ds *dataset.Dataset, dest string) error {
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

// Write serializes ds to w.
func (e *DelimitedExporter) Write(w io.Writer, ds *dataset.Dataset) error {
	if e.RFC4180 {
		cw := csv.NewWriter(w)
		cw.Comma = e.Delimiter
		if err := cw.WriteAll(ds.Records()); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
		return nil
	}

	sep := string(e.Delimiter)
	unsafe := 0
	bw := bufio.NewWriter(w)
	for _, record := range ds.Records() {
		if normalize.ContainsAny(record, sep+"\n\r") {
			unsafe++
		}
		if _, err := bw.WriteString(strings.Join(record, sep) + "\n"); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	if unsafe > 0 && e.logger != nil {
		e.logger.Warn("Records contain the delimiter and were written unquoted",
			"records", unsafe,
			"delimiter", fmt.Sprintf("%q", sep),
		)
	}
	return nil
}
