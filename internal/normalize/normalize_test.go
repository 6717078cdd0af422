package normalize

import (
	"testing"

	"mirror-scraper/internal/config"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.NormalizeConfig
		input    string
		expected string
	}{
		{"trim only", config.NormalizeConfig{}, "  ghost \n", "ghost"},
		{"inner spaces kept", config.NormalizeConfig{}, "a   b", "a   b"},
		{"edge nbsp trimmed", config.NormalizeConfig{}, "\u00A0ghost\u00A0", "ghost"},
		{"inner nbsp replaced", config.NormalizeConfig{TrimNBSP: true}, "a\u00A0b", "a b"},
		{"collapse", config.NormalizeConfig{CollapseSpaces: true}, "a \n\t b", "a b"},
		{"both", config.NormalizeConfig{TrimNBSP: true, CollapseSpaces: true}, "\u00A0a \u00A0 b ", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.cfg)
			if got := n.Cell(tt.input); got != tt.expected {
				t.Errorf("Cell(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny([]string{"a", "b,c"}, ",") {
		t.Errorf("ContainsAny should find the comma")
	}
	if ContainsAny([]string{"a", "b"}, ",\n") {
		t.Errorf("ContainsAny found a delimiter that is not there")
	}
}
