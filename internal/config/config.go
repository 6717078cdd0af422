package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Config struct {
	Source              SourceConfig        `yaml:"source"`
	Fetcher             FetcherConfig       `yaml:"fetcher"`
	Rod                 RodConfig           `yaml:"rod"`
	Backoff             BackoffConfig       `yaml:"backoff"`
	RobotsCacheTTLHours int                 `yaml:"robots_cache_ttl_hours"`
	HTTP                HttpConfig          `yaml:"http"`
	RateLimit           RateLimitConfig     `yaml:"rate_limit"`
	Pagination          PaginationConfig    `yaml:"pagination"`
	SelectorsFile       string              `yaml:"selectors_file"`
	Schema              SchemaConfig        `yaml:"schema"`
	Normalize           NormalizeConfig     `yaml:"normalize"`
	Export              ExportConfig        `yaml:"export"`
	Storage             StorageConfig       `yaml:"storage"`
	Scheduler           SchedulerConfig     `yaml:"scheduler"`
	Preview             PreviewConfig       `yaml:"preview"`
	Observability       ObservabilityConfig `yaml:"observability"`
}

type SourceConfig struct {
	BaseURL string `yaml:"base_url"`
	Country string `yaml:"country"`
}

type FetcherConfig struct {
	Mode string `yaml:"mode"` // http | rod
}

type RodConfig struct {
	ChromePath       string `yaml:"chrome_path"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	AcceptLanguage            string `yaml:"accept_language"`
	ConnectTimeoutMS          int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxRetries                int    `yaml:"max_retries"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
	RespectRobots             bool   `yaml:"respect_robots"`
}

type RateLimitConfig struct {
	RPM int `yaml:"rpm"` // 0 disables throttling
}

type PaginationConfig struct {
	StartPage int `yaml:"start_page"`
	Pages     int `yaml:"pages"`
}

type SchemaConfig struct {
	Columns []string `yaml:"columns"`
	Strict  bool     `yaml:"strict"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces"`
}

type ExportConfig struct {
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	Quoting   string `yaml:"quoting"` // none | rfc4180
	XMLRoot   string `yaml:"xml_root"`
	XMLItem   string `yaml:"xml_item"`
	XMLIndent bool   `yaml:"xml_indent"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	Table            string `yaml:"table"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
	BatchSize        int    `yaml:"batch_size"`
	Replace          bool   `yaml:"replace"`
}

type SchedulerConfig struct {
	Mode          string `yaml:"mode"`
	IntervalS     int    `yaml:"interval_s"`
	CronExpr      string `yaml:"cron_expr"`
	MaxRuns       int    `yaml:"max_runs"`
	SkipUnchanged bool   `yaml:"skip_unchanged"`
}

type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	MaxRows int  `yaml:"max_rows"` // 0 prints every row
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

// DefaultColumns is the header of every exported dataset unless schema.columns overrides it.
var DefaultColumns = []string{"Date", "Hacker", "Team", "M", "R", "H", "G", "B", "Website", "Mirror"}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Default returns the configuration used when no file is given; YAML files are decoded on top of it.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL: "https://zone-xsec.com",
			Country: "AU",
		},
		Fetcher: FetcherConfig{Mode: "http"},
		Rod: RodConfig{
			PageTimeoutS:     60,
			WaitLoadTimeoutS: 30,
			LazyLoadDelayS:   0,
		},
		Backoff: BackoffConfig{
			MinMS:     250,
			MaxMS:     2000,
			JitterPct: 20,
		},
		RobotsCacheTTLHours: 12,
		HTTP: HttpConfig{
			UserAgent:                 "Mozilla/5.0 (compatible; mirror-scraper/1.0)",
			AcceptLanguage:            "en-US,en;q=0.9",
			ConnectTimeoutMS:          10000,
			TotalTimeoutMS:            30000,
			MaxRetries:                0,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
		},
		Pagination: PaginationConfig{
			StartPage: 1,
			Pages:     1,
		},
		SelectorsFile: "selectors.yaml",
		Schema: SchemaConfig{
			Columns: append([]string(nil), DefaultColumns...),
		},
		Export: ExportConfig{
			Format:  "csv",
			Quoting: "none",
			XMLRoot: "data",
			XMLItem: "item",
		},
		Storage: StorageConfig{
			Driver:           "sqlite",
			Table:            "scraped_data",
			CommandTimeoutMS: 30000,
			BatchSize:        100,
			Replace:          true,
		},
		Scheduler: SchedulerConfig{Mode: "oneshot"},
		Preview:   PreviewConfig{Enabled: true},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogMaxSizeMB:  10,
			LogMaxBackups: 3,
			LogMaxAgeDays: 28,
		},
	}
}

// PageURL builds the listing URL for a 1-based page index.
func (c *Config) PageURL(page int) string {
	return fmt.Sprintf("%s/country/%s/page=%d", strings.TrimRight(c.Source.BaseURL, "/"), c.Source.Country, page)
}

// Validation
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Source.Country == "" {
		return fmt.Errorf("source.country is required")
	}
	if c.Fetcher.Mode != "http" && c.Fetcher.Mode != "rod" {
		return fmt.Errorf("fetcher.mode must be 'http' or 'rod'")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.RateLimit.RPM < 0 {
		return fmt.Errorf("rate_limit.rpm must be >= 0")
	}
	if c.Pagination.StartPage <= 0 {
		return fmt.Errorf("pagination.start_page must be > 0")
	}
	if c.Pagination.Pages <= 0 {
		return fmt.Errorf("pagination.pages must be > 0")
	}
	if len(c.Schema.Columns) == 0 {
		return fmt.Errorf("schema.columns must not be empty")
	}
	seen := make(map[string]bool, len(c.Schema.Columns))
	for _, col := range c.Schema.Columns {
		if !identifierRe.MatchString(col) {
			return fmt.Errorf("schema.columns: %q is not a valid column name", col)
		}
		if seen[strings.ToLower(col)] {
			return fmt.Errorf("schema.columns: duplicate column %q", col)
		}
		seen[strings.ToLower(col)] = true
	}
	if c.Export.Quoting != "none" && c.Export.Quoting != "rfc4180" {
		return fmt.Errorf("export.quoting must be 'none' or 'rfc4180'")
	}
	if !identifierRe.MatchString(c.Export.XMLRoot) || !identifierRe.MatchString(c.Export.XMLItem) {
		return fmt.Errorf("export.xml_root and export.xml_item must be valid element names")
	}
	if c.Storage.Driver == "" {
		return fmt.Errorf("storage.driver is required")
	}
	if c.Storage.Driver != "sqlite" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
	}
	if !identifierRe.MatchString(c.Storage.Table) {
		return fmt.Errorf("storage.table: %q is not a valid table name", c.Storage.Table)
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Storage.BatchSize <= 0 {
		return fmt.Errorf("storage.batch_size must be > 0")
	}
	if c.Scheduler.Mode != "interval" && c.Scheduler.Mode != "cron" && c.Scheduler.Mode != "oneshot" {
		return fmt.Errorf("scheduler.mode must be 'interval', 'cron' or 'oneshot'")
	}
	if c.Scheduler.Mode == "interval" && c.Scheduler.IntervalS <= 0 {
		return fmt.Errorf("scheduler.interval_s must be > 0 when mode is 'interval'")
	}
	if c.Scheduler.Mode == "cron" && c.Scheduler.CronExpr == "" {
		return fmt.Errorf("scheduler.cron_expr must be set when mode is 'cron'")
	}
	if c.Scheduler.MaxRuns < 0 {
		return fmt.Errorf("scheduler.max_runs must be >= 0")
	}
	if c.Preview.MaxRows < 0 {
		return fmt.Errorf("preview.max_rows must be >= 0")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.RobotsCacheTTLHours <= 0 {
		return fmt.Errorf("robots_cache_ttl_hours must be > 0")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.Fetcher.Mode == "rod" {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.LazyLoadDelayS < 0 {
			return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetSchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalS) * time.Second
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.RobotsCacheTTLHours) * time.Hour
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}
