package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"localch-scraper/common"
)

const (
	DefaultBaseURL   = "https://www.local.ch/en/s/"
	DefaultSiteRoot  = "https://www.local.ch"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds everything the scraper needs; components receive it at construction.
type Config struct {
	BaseURL  string
	SiteRoot string
	Headers  map[string]string

	MaxListings int
	Threads     int
	Retries     int

	RetryBase      time.Duration
	JitterMax      time.Duration
	RequestTimeout time.Duration
	PageDelayMin   time.Duration
	PageDelayMax   time.Duration
	EmptyPageLimit int
	MaxPages       int

	OutputDir     string
	RespectRobots bool

	ProxyURL  string
	ProxyPool string

	// Optional sinks; empty address disables them.
	KafkaBroker string
	KafkaTopic  string
	RedisAddr   string
	StatusTTL   time.Duration
	MetricsAddr string

	LogLevel string
}

// Default returns the build-time configuration.
func Default() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		SiteRoot: DefaultSiteRoot,
		Headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		MaxListings:    100,
		Threads:        10,
		Retries:        3,
		RetryBase:      time.Second,
		JitterMax:      1500 * time.Millisecond,
		RequestTimeout: 15 * time.Second,
		PageDelayMin:   800 * time.Millisecond,
		PageDelayMax:   1500 * time.Millisecond,
		EmptyPageLimit: 1,
		MaxPages:       50,
		OutputDir:      "output",
		KafkaTopic:     "localch.listings",
		StatusTTL:      24 * time.Hour,
		LogLevel:       "info",
	}
}

// Load returns Default overridden by environment variables. A .env file in the
// working directory is read first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	cfg.BaseURL = common.GetEnv("LOCALCH_BASE_URL", cfg.BaseURL)
	cfg.SiteRoot = common.GetEnv("LOCALCH_SITE_ROOT", cfg.SiteRoot)
	cfg.Headers["User-Agent"] = common.GetEnv("LOCALCH_USER_AGENT", cfg.Headers["User-Agent"])
	cfg.MaxListings = common.EnvInt("MAX_LISTINGS", cfg.MaxListings)
	cfg.Threads = common.EnvInt("THREADS", cfg.Threads)
	cfg.Retries = common.EnvInt("RETRIES", cfg.Retries)
	cfg.RetryBase = common.EnvDuration("RETRY_BASE_DELAY", cfg.RetryBase)
	cfg.JitterMax = common.EnvDuration("RETRY_JITTER_MAX", cfg.JitterMax)
	cfg.RequestTimeout = common.EnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.PageDelayMin = common.EnvDuration("PAGE_DELAY_MIN", cfg.PageDelayMin)
	cfg.PageDelayMax = common.EnvDuration("PAGE_DELAY_MAX", cfg.PageDelayMax)
	cfg.EmptyPageLimit = common.EnvInt("EMPTY_PAGE_LIMIT", cfg.EmptyPageLimit)
	cfg.MaxPages = common.EnvInt("MAX_PAGES", cfg.MaxPages)
	cfg.OutputDir = common.GetEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.RespectRobots = common.EnvBool("RESPECT_ROBOTS_TXT", cfg.RespectRobots)
	cfg.ProxyURL = common.GetEnv("PROXY_URL", "")
	cfg.ProxyPool = common.GetEnv("PROXY_POOL", "")
	cfg.KafkaBroker = common.GetEnv("KAFKA_BROKER", "")
	cfg.KafkaTopic = common.GetEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.RedisAddr = common.GetEnv("REDIS_ADDR", "")
	cfg.StatusTTL = common.EnvDuration("STATUS_TTL", cfg.StatusTTL)
	cfg.MetricsAddr = common.GetEnv("METRICS_ADDR", "")
	cfg.LogLevel = common.GetEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: base URL is empty")
	case c.MaxListings < 1:
		return fmt.Errorf("config: max listings must be positive, got %d", c.MaxListings)
	case c.Threads < 1:
		return fmt.Errorf("config: thread count must be positive, got %d", c.Threads)
	case c.Retries < 1:
		return fmt.Errorf("config: retry count must be positive, got %d", c.Retries)
	case c.RetryBase < 0 || c.JitterMax < 0:
		return errors.New("config: retry delays must not be negative")
	case c.PageDelayMin < 0 || c.PageDelayMax < c.PageDelayMin:
		return fmt.Errorf("config: invalid page delay range [%s, %s)", c.PageDelayMin, c.PageDelayMax)
	}
	return nil
}
