// Package config loads runtime configuration for the article-extraction
// service from the environment, with sane defaults for everything.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configurable subsystem.
type Config struct {
	Server  ServerConfig
	Scraper ScraperConfig
	Browser BrowserConfig
	Image   ImageConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP entrypoint.
type ServerConfig struct {
	Host         string // default: "0.0.0.0"
	Port         int    // default: 8080
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ScraperConfig controls the core scrape pipeline's budgets and identity.
type ScraperConfig struct {
	// UserAgent is sent by both HTTPFetcher and BrowserFetcher.
	UserAgent string

	// ChromeMajor is the Chrome major version the UA and TLS fingerprint claim.
	ChromeMajor int // default: 133

	// HTTPPhaseBudget is the default allotment for Phase A (§4.1), before
	// clipping against the remaining request deadline.
	HTTPPhaseBudget time.Duration // default: 18s

	// BrowserPhaseBudget is the default allotment for Phase B.
	BrowserPhaseBudget time.Duration // default: 40s

	// DeadlineSafetyMargin is subtracted from the remaining deadline before
	// computing each phase's budget (§4.1).
	DeadlineSafetyMargin time.Duration // default: 3s

	// SizeLimitBytes caps the HTML body HTTPFetcher will read.
	SizeLimitBytes int64 // default: 6_000_000

	// MaxRedirects bounds HTTP redirect following.
	MaxRedirects int // default: 5

	// MaxRetries bounds 5xx retry attempts.
	MaxRetries int // default: 2

	// RetryBaseDelay and RetryMaxDelay bound the exponential backoff.
	RetryBaseDelay time.Duration // default: 1s
	RetryMaxDelay  time.Duration // default: 5s

	// DefaultImageLimit is N in ImageSelector.select (§4.6).
	DefaultImageLimit int // default: 3

	// DefaultRequestTimeout is used when a caller supplies no deadline.
	DefaultRequestTimeout time.Duration // default: 25s

	// RequestsPerSecond and RequestBurst pace HTTPFetcher's outbound requests
	// (primary plus every alternate-URL race leg) through a token bucket.
	RequestsPerSecond float64 // default: 4
	RequestBurst      int     // default: 4
}

// BrowserConfig controls headless-browser launch and identity spoofing (§4.3).
type BrowserConfig struct {
	Headless        bool
	NoSandbox       bool
	DisableGPU      bool
	DisableDevShm   bool
	ViewportWidth   int
	ViewportHeight  int
	Timezone        string
	BrowserBin      string
	TrackerDenylist []string
}

// ImageConfig controls ImageSelector's filtering and scoring thresholds (§4.6).
type ImageConfig struct {
	MinShortSide  int
	MinArea       int
	MinAspect     float64
	MaxAspect     float64
	RatioTol      float64
	RatioWhitelist []float64
	AdSizes       [][2]int
	BadHintPattern string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         envOr("ARTICLE_HOST", "0.0.0.0"),
			Port:         envIntOr("ARTICLE_PORT", 8080),
			ReadTimeout:  envDurationOr("ARTICLE_READ_TIMEOUT", 60*time.Second),
			WriteTimeout: envDurationOr("ARTICLE_WRITE_TIMEOUT", 65*time.Second),
			IdleTimeout:  envDurationOr("ARTICLE_IDLE_TIMEOUT", 120*time.Second),
		},
		Scraper: ScraperConfig{
			UserAgent:             envOr("SCRAPE_USER_AGENT", defaultUserAgent(envIntOr("SCRAPE_CHROME_MAJOR", 133))),
			ChromeMajor:           envIntOr("SCRAPE_CHROME_MAJOR", 133),
			HTTPPhaseBudget:       envDurationOr("ARTICLE_HTTP_BUDGET", 18*time.Second),
			BrowserPhaseBudget:    envDurationOr("ARTICLE_BROWSER_BUDGET", 40*time.Second),
			DeadlineSafetyMargin:  envDurationOr("ARTICLE_DEADLINE_MARGIN", 3*time.Second),
			SizeLimitBytes:        int64(envIntOr("ARTICLE_SIZE_LIMIT_BYTES", 6_000_000)),
			MaxRedirects:          envIntOr("ARTICLE_MAX_REDIRECTS", 5),
			MaxRetries:            envIntOr("ARTICLE_MAX_RETRIES", 2),
			RetryBaseDelay:        envDurationOr("ARTICLE_RETRY_BASE_DELAY", 1*time.Second),
			RetryMaxDelay:         envDurationOr("ARTICLE_RETRY_MAX_DELAY", 5*time.Second),
			DefaultImageLimit:     envIntOr("ARTICLE_IMAGE_LIMIT", 3),
			DefaultRequestTimeout: envDurationOr("ARTICLE_DEFAULT_TIMEOUT", 25*time.Second),
			RequestsPerSecond:     envFloatOr("ARTICLE_HTTP_RPS", 4),
			RequestBurst:          envIntOr("ARTICLE_HTTP_BURST", 4),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("ARTICLE_BROWSER_HEADLESS", true),
			NoSandbox:      envBoolOr("ARTICLE_BROWSER_NO_SANDBOX", true),
			DisableGPU:     envBoolOr("ARTICLE_BROWSER_DISABLE_GPU", true),
			DisableDevShm:  envBoolOr("ARTICLE_BROWSER_DISABLE_DEV_SHM", true),
			ViewportWidth:  envIntOr("ARTICLE_VIEWPORT_WIDTH", 1366),
			ViewportHeight: envIntOr("ARTICLE_VIEWPORT_HEIGHT", 900),
			Timezone:       envOr("ARTICLE_TIMEZONE", "America/New_York"),
			BrowserBin:     os.Getenv("ARTICLE_BROWSER_BIN"),
			TrackerDenylist: envSliceOr("ARTICLE_TRACKER_DENYLIST", []string{
				"doubleclick.net", "googlesyndication.com", "google-analytics.com",
				"facebook.com/tr", "taboola.com", "outbrain.com",
				"scorecardresearch.com", "chartbeat.com", "amazon-adsystem.com",
			}),
		},
		Image: ImageConfig{
			MinShortSide:   envIntOr("ARTICLE_IMG_MIN_SHORT_SIDE", 300),
			MinArea:        envIntOr("ARTICLE_IMG_MIN_AREA", 140000),
			MinAspect:      envFloatOr("ARTICLE_IMG_MIN_ASPECT", 0.5),
			MaxAspect:      envFloatOr("ARTICLE_IMG_MAX_ASPECT", 2.6),
			RatioTol:       envFloatOr("ARTICLE_IMG_RATIO_TOL", 0.09),
			RatioWhitelist: []float64{1.333, 1.5, 1.6, 1.667, 1.777, 1.85, 2},
			AdSizes: [][2]int{
				{728, 90}, {970, 90}, {970, 250}, {468, 60}, {320, 50}, {300, 50},
				{300, 250}, {336, 280}, {300, 600}, {160, 600}, {120, 600},
				{250, 250}, {200, 200}, {180, 150}, {234, 60}, {120, 240}, {88, 31},
			},
			BadHintPattern: `(?i)(sprite|icon|favicon|logo|avatar|emoji|placeholder|pixel|tracker|ads?|adserver|promo|beacon)`,
		},
		Log: LogConfig{
			Level:  envOr("ARTICLE_LOG_LEVEL", "info"),
			Format: envOr("ARTICLE_LOG_FORMAT", "json"),
		},
	}
}

func defaultUserAgent(chromeMajor int) string {
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/" +
		strconv.Itoa(chromeMajor) + ".0.0.0 Safari/537.36"
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
