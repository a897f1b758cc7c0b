package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"FinSent/internal/model"
)

// Data source providers.
const (
	ProviderYahoo = "yahoo"
	ProviderMock  = "mock"
)

// HeadlineLimit caps how many headlines a single request may ask for.
const HeadlineLimit = 50

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		AllowedOrigin  string        `yaml:"allowed_origin"`
	} `yaml:"server"`
	DataSource struct {
		Provider     string  `yaml:"provider"`
		ChartBaseURL string  `yaml:"chart_base_url"`
		MockPrice    float64 `yaml:"mock_price"`
	} `yaml:"data_source"`
	News struct {
		FeedBaseURL       string        `yaml:"feed_base_url"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		MaxHeadlines      int           `yaml:"max_headlines"`
	} `yaml:"news"`
	Dashboard struct {
		DefaultTicker   string             `yaml:"default_ticker"`
		DefaultPeriod   string             `yaml:"default_period"`
		DefaultInterval string             `yaml:"default_interval"`
		TableRows       int                `yaml:"table_rows"`
		Catalog         []model.TickerInfo `yaml:"catalog"`
		Watchlist       []string           `yaml:"watchlist"`
	} `yaml:"dashboard"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Breaker struct {
		MaxRequests  uint32        `yaml:"max_requests"`
		Interval     time.Duration `yaml:"interval"`
		Timeout      time.Duration `yaml:"timeout"`
		MinRequests  uint32        `yaml:"min_requests"`
		FailureRatio float64       `yaml:"failure_ratio"`
	} `yaml:"breaker"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`

	// set records keys whose zero value was chosen explicitly.
	set struct {
		refreshCron bool
		newsRPS     bool
	}
}

// ScheduleOff is accepted for refresh_cron and CRON_REFRESH as an explicit
// way to disable the refresh job.
const ScheduleOff = "off"

// presence mirrors the keys whose empty or zero value means "disabled"
// rather than "use the default".
type presence struct {
	News struct {
		RequestsPerSecond *float64 `yaml:"requests_per_second"`
	} `yaml:"news"`
	Schedule struct {
		RefreshCron *string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		var p presence
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.set.refreshCron = p.Schedule.RefreshCron != nil
		cfg.set.newsRPS = p.News.RequestsPerSecond != nil
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("CHART_BASE_URL"); v != "" {
		cfg.DataSource.ChartBaseURL = v
	}
	if v := os.Getenv("NEWS_FEED_BASE_URL"); v != "" {
		cfg.News.FeedBaseURL = v
	}
	if v := os.Getenv("NEWS_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.News.RequestsPerSecond = rps
			cfg.set.newsRPS = true
		}
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	// An empty CRON_REFRESH that is present still disables the schedule.
	if v, ok := os.LookupEnv("CRON_REFRESH"); ok {
		cfg.Schedule.RefreshCron = v
		cfg.set.refreshCron = true
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Dashboard.Watchlist = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8050"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 60 * time.Second
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.MockPrice == 0 {
		c.DataSource.MockPrice = 100
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 15 * time.Second
	}
	if c.News.RequestsPerSecond == 0 && !c.set.newsRPS {
		c.News.RequestsPerSecond = 2
	}
	if c.News.Burst == 0 {
		c.News.Burst = 2
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 5
	}
	if c.Dashboard.DefaultTicker == "" {
		c.Dashboard.DefaultTicker = "RELIANCE.NS"
	}
	if c.Dashboard.DefaultPeriod == "" {
		c.Dashboard.DefaultPeriod = string(model.Period1mo)
	}
	if c.Dashboard.DefaultInterval == "" {
		c.Dashboard.DefaultInterval = string(model.Interval1d)
	}
	if c.Dashboard.TableRows == 0 {
		c.Dashboard.TableRows = 10
	}
	if len(c.Dashboard.Catalog) == 0 {
		c.Dashboard.Catalog = append([]model.TickerInfo(nil), model.DefaultCatalog...)
	}
	if len(c.Dashboard.Watchlist) == 0 {
		for _, t := range c.Dashboard.Catalog {
			c.Dashboard.Watchlist = append(c.Dashboard.Watchlist, t.Symbol)
		}
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data"
	}
	c.Schedule.RefreshCron = strings.TrimSpace(c.Schedule.RefreshCron)
	if strings.EqualFold(c.Schedule.RefreshCron, ScheduleOff) {
		c.Schedule.RefreshCron = ""
	} else if c.Schedule.RefreshCron == "" && !c.set.refreshCron {
		c.Schedule.RefreshCron = "0 0 22 * * 1-5"
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 3
	}
	if c.Breaker.Interval == 0 {
		c.Breaker.Interval = time.Minute
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = 30 * time.Second
	}
	if c.Breaker.MinRequests == 0 {
		c.Breaker.MinRequests = 5
	}
	if c.Breaker.FailureRatio == 0 {
		c.Breaker.FailureRatio = 0.5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 14
	}
}

// Validate checks the loaded values are usable.
func (c *Config) Validate() error {
	period, err := model.ParsePeriod(c.Dashboard.DefaultPeriod)
	if err != nil {
		return fmt.Errorf("dashboard.default_period: %w", err)
	}
	interval, err := model.ParseInterval(c.Dashboard.DefaultInterval)
	if err != nil {
		return fmt.Errorf("dashboard.default_interval: %w", err)
	}
	if err := model.ValidateRange(period, interval); err != nil {
		return fmt.Errorf("dashboard defaults: %w", err)
	}
	if strings.TrimSpace(c.Dashboard.DefaultTicker) == "" {
		return fmt.Errorf("dashboard.default_ticker is required")
	}
	if c.News.MaxHeadlines < 1 || c.News.MaxHeadlines > HeadlineLimit {
		return fmt.Errorf("news.max_headlines must be between 1 and %d", HeadlineLimit)
	}
	if c.News.RequestsPerSecond < 0 {
		return fmt.Errorf("news.requests_per_second must not be negative (0 disables limiting)")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1]")
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider must be %q or %q", ProviderYahoo, ProviderMock)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console")
	}
	return nil
}

// DefaultPeriod returns the validated default period.
func (c *Config) DefaultPeriod() model.Period { return model.Period(c.Dashboard.DefaultPeriod) }

// DefaultInterval returns the validated default interval.
func (c *Config) DefaultInterval() model.Interval { return model.Interval(c.Dashboard.DefaultInterval) }

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}
