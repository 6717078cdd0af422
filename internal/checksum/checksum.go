package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"mirror-scraper/internal/dataset"
)

const (
	fieldSep = "\x1f"
	rowSep   = "\x1e"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateDatasetHash returns the hex SHA256 of the header and rows.
// Unit/record separators keep ["a,b"] and ["a","b"] apart.
func (g *Generator) GenerateDatasetHash(ds *dataset.Dataset) string {
	h := sha256.New()
	for _, record := range ds.Records() {
		h.Write([]byte(strings.Join(record, fieldSep)))
		h.Write([]byte(rowSep))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// VerifyDatasetHash checks a hash produced by GenerateDatasetHash.
func (g *Generator) VerifyDatasetHash(expectedHash string, ds *dataset.Dataset) bool {
	return g.GenerateDatasetHash(ds) == expectedHash
}
