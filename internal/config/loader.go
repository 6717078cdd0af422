package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. MIRROR_PAGES.
const EnvPrefix = "MIRROR_"

// LoadConfig reads the YAML file on top of Default(), applies .env and
// environment overrides and validates the result.
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault is LoadConfig without a file.
func LoadDefault() (*Config, error) {
	cfg := Default()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finish(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return fmt.Errorf("environment override error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

// ApplyEnv overrides the most commonly changed fields from MIRROR_* variables.
func ApplyEnv(cfg *Config) error {
	strs := map[string]*string{
		"BASE_URL":       &cfg.Source.BaseURL,
		"COUNTRY":        &cfg.Source.Country,
		"FETCHER_MODE":   &cfg.Fetcher.Mode,
		"CHROME_PATH":    &cfg.Rod.ChromePath,
		"USER_AGENT":     &cfg.HTTP.UserAgent,
		"FORMAT":         &cfg.Export.Format,
		"OUTPUT":         &cfg.Export.Output,
		"STORAGE_DRIVER": &cfg.Storage.Driver,
		"STORAGE_DSN":    &cfg.Storage.DSN,
		"LOG_PATH":       &cfg.Observability.LogPath,
		"LOG_LEVEL":      &cfg.Observability.LogLevel,
	}
	for key, dst := range strs {
		if val, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = val
		}
	}

	ints := map[string]*int{
		"PAGES":       &cfg.Pagination.Pages,
		"START_PAGE":  &cfg.Pagination.StartPage,
		"MAX_RETRIES": &cfg.HTTP.MaxRetries,
		"INTERVAL_S":  &cfg.Scheduler.IntervalS,
	}
	for key, dst := range ints {
		val, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}
	return nil
}
