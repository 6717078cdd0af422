package normalize

import (
	"regexp"
	"strings"

	"mirror-scraper/internal/config"
)

var spacesRe = regexp.MustCompile(`\s+`)

type Normalizer struct {
	cfg config.NormalizeConfig
}

func NewNormalizer(cfg config.NormalizeConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Cell trims the text of a table cell and applies the configured clean-ups.
func (n *Normalizer) Cell(text string) string {
	if n.cfg.TrimNBSP {
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.cfg.CollapseSpaces {
		text = spacesRe.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// ContainsAny reports whether any cell of row contains one of the runes in chars.
func ContainsAny(row []string, chars string) bool {
	for _, cell := range row {
		if strings.ContainsAny(cell, chars) {
			return true
		}
	}
	return false
}
