package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scraper.HTTPPhaseBudget != 18*time.Second {
		t.Fatalf("expected default HTTP phase budget 18s, got %v", cfg.Scraper.HTTPPhaseBudget)
	}
	if cfg.Image.MinShortSide != 300 {
		t.Fatalf("expected default min short side 300, got %d", cfg.Image.MinShortSide)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("ARTICLE_PORT", "9090")
	os.Setenv("ARTICLE_HTTP_BUDGET", "5s")
	defer os.Unsetenv("ARTICLE_PORT")
	defer os.Unsetenv("ARTICLE_HTTP_BUDGET")

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected overridden port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Scraper.HTTPPhaseBudget != 5*time.Second {
		t.Fatalf("expected overridden HTTP budget 5s, got %v", cfg.Scraper.HTTPPhaseBudget)
	}
}

func TestEnvSliceOr_TrimsAndFilters(t *testing.T) {
	os.Setenv("ARTICLE_TRACKER_DENYLIST", "a.com, , b.com")
	defer os.Unsetenv("ARTICLE_TRACKER_DENYLIST")

	cfg := Load()
	if len(cfg.Browser.TrackerDenylist) != 2 {
		t.Fatalf("expected 2 entries, got %v", cfg.Browser.TrackerDenylist)
	}
}
