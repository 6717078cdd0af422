package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mirror-scraper/internal/scraper"
)

// LoadSelectors reads table selectors from a YAML file; missing keys keep scraper.DefaultSelectors.
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	selectors := scraper.DefaultSelectors()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(selectors); err != nil {
		return nil, err
	}

	return selectors, nil
}

// ResolveSelectors loads the configured selectors file relative to configDir.
// A missing file is not an error: the built-in selectors are used.
func (c *Config) ResolveSelectors(configDir string) (*scraper.Selectors, error) {
	if c.SelectorsFile == "" {
		return scraper.DefaultSelectors(), nil
	}

	filePath := c.SelectorsFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(configDir, filePath)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return scraper.DefaultSelectors(), nil
	}

	return LoadSelectors(filePath)
}

func validateSelectors(s *scraper.Selectors) error {
	if s.Table == "" {
		return fmt.Errorf("table is required")
	}
	if s.Row == "" {
		return fmt.Errorf("row is required")
	}
	if s.Cell == "" {
		return fmt.Errorf("cell is required")
	}

	return nil
}
