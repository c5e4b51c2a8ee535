package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/purify/challenge"
	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/models"
)

func testScraperConfig() config.ScraperConfig {
	cfg := config.Load().Scraper
	cfg.MaxRetries = 2
	cfg.RetryBaseDelay = 10 * time.Millisecond
	cfg.RetryMaxDelay = 40 * time.Millisecond
	cfg.SizeLimitBytes = 1 << 20
	return cfg
}

// unlimited is used in tests that shouldn't have their requests paced.
func unlimited() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><title>Hello</title></html>"))
	}))
	defer srv.Close()

	f := &Fetcher{cfg: testScraperConfig(), client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	out, err := f.Fetch(context.Background(), srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != 200 {
		t.Fatalf("expected 200, got %d", out.Status)
	}
}

func TestFetch_NonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := &Fetcher{cfg: testScraperConfig(), client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	_, err := f.Fetch(context.Background(), srv.URL, 2*time.Second)
	se, ok := err.(*models.ScrapeError)
	if !ok || se.Code != models.ErrCodeNonHTML {
		t.Fatalf("expected NonHTML error, got %v", err)
	}
}

func TestFetch_RetriesOn5xxOnly(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := &Fetcher{cfg: testScraperConfig(), client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	_, err := f.Fetch(context.Background(), srv.URL, 2*time.Second)
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 { // initial + 2 retries
		t.Fatalf("expected 3 calls (1 + MaxRetries), got %d", calls)
	}
}

func TestFetch_NoRetryOn4xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{cfg: testScraperConfig(), client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	_, err := f.Fetch(context.Background(), srv.URL, 2*time.Second)
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for a 4xx, got %d", calls)
	}
}

func TestFetch_OversizeHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		big := make([]byte, 2<<20)
		w.Write(big)
	}))
	defer srv.Close()

	cfg := testScraperConfig()
	cfg.SizeLimitBytes = 1 << 20
	f := &Fetcher{cfg: cfg, client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	_, err := f.Fetch(context.Background(), srv.URL, 2*time.Second)
	se, ok := err.(*models.ScrapeError)
	if !ok || se.Code != models.ErrCodeOversizeHTML {
		t.Fatalf("expected OversizeHTML error, got %v", err)
	}
}

func TestFetchWithAlternates_NonHTMLShortCircuitsWithoutAlternates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := &Fetcher{cfg: testScraperConfig(), client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	_, err := f.FetchWithAlternates(context.Background(), srv.URL, 2*time.Second)
	se, ok := err.(*models.ScrapeError)
	if !ok || se.Code != models.ErrCodeNonHTML {
		t.Fatalf("expected NonHTML to short-circuit unchanged, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, non-HTML must not trigger the alternate race, got %d", calls)
	}
}

func TestFetchWithAlternates_ChallengeClassifiesProviderAndQualifiesForRace(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Just a moment...</title></head><body>Checking your browser</body></html>`))
	}))
	defer srv.Close()

	f := &Fetcher{cfg: testScraperConfig(), client: srv.Client(), detector: challenge.New(), limiter: unlimited()}
	_, err := f.FetchWithAlternates(context.Background(), srv.URL+"/story", 2*time.Second)
	se, ok := err.(*models.ScrapeError)
	if !ok || se.Code != models.ErrCodeAllAlternatesFailed {
		t.Fatalf("expected AllAlternatesFailed after every leg served a challenge, got %v", err)
	}
	if calls < 2 {
		t.Fatalf("expected the challenge to qualify for the alternate race, only saw %d calls", calls)
	}

	underlying, ok := se.Err.(*models.ScrapeError)
	if !ok || underlying.Code != models.ErrCodeBlockedByChallenge || underlying.Provider != "cloudflare" {
		t.Fatalf("expected the wrapped failure to carry provider cloudflare, got %+v", se.Err)
	}
}
