package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/extractor"
	"github.com/use-agent/purify/images"
	"github.com/use-agent/purify/models"
)

type fakeHTTP struct {
	outcome *models.FetchOutcome
	err     error
	calls   int
}

func (f *fakeHTTP) FetchWithAlternates(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fakeBrowser struct {
	outcome *models.FetchOutcome
	err     error
	calls   int
}

func (f *fakeBrowser) FetchWithBrowser(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

func testOrchestrator(h httpPhase, b browserPhase) *Orchestrator {
	cfg := config.Load()
	return &Orchestrator{
		cfg:       cfg.Scraper,
		http:      h,
		browser:   b,
		extractor: extractor.New(),
		images:    images.New(cfg.Image),
	}
}

const samplePage = `<html><head><title>Story</title></head><body><article><p>This article has a reasonably long paragraph of body text for extraction.</p></article></body></html>`

func TestScrape_HTTPHappyPathSkipsBrowser(t *testing.T) {
	h := &fakeHTTP{outcome: &models.FetchOutcome{HTML: []byte(samplePage), FinalURL: "https://example.com/story", Status: 200, Phase: "http"}}
	b := &fakeBrowser{}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story"}
	req.Defaults(25*time.Second, 3)

	result, blocked, err := o.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked != nil {
		t.Fatalf("expected no blocked result, got %+v", blocked)
	}
	if result.Title != "Story" {
		t.Fatalf("expected title Story, got %q", result.Title)
	}
	if b.calls != 0 {
		t.Fatalf("expected browser phase to be skipped, got %d calls", b.calls)
	}
}

func TestScrape_NonHTMLAdvancesToBrowser(t *testing.T) {
	h := &fakeHTTP{err: models.NewScrapeError(models.ErrCodeNonHTML, "not html", nil)}
	b := &fakeBrowser{outcome: &models.FetchOutcome{HTML: []byte(samplePage), FinalURL: "https://example.com/story", Status: 200, Phase: "browser"}}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story"}
	req.Defaults(25*time.Second, 3)

	result, blocked, err := o.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked != nil {
		t.Fatalf("expected no blocked result, got %+v", blocked)
	}
	if b.calls != 1 {
		t.Fatalf("expected browser phase to run once, got %d calls", b.calls)
	}
	if result.Title != "Story" {
		t.Fatalf("expected title Story, got %q", result.Title)
	}
}

func TestScrape_OversizeHTMLIsFatalSkipsBrowser(t *testing.T) {
	h := &fakeHTTP{err: models.NewScrapeError(models.ErrCodeOversizeHTML, "too big", nil)}
	b := &fakeBrowser{}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story"}
	req.Defaults(25*time.Second, 3)

	_, _, err := o.Scrape(context.Background(), req)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if b.calls != 0 {
		t.Fatalf("expected fatal error to skip browser phase, got %d calls", b.calls)
	}
}

func TestScrape_BlockedInBothPhasesReturnsBlockedResult(t *testing.T) {
	h := &fakeHTTP{err: models.NewScrapeError(models.ErrCodeBlockedByChallenge, "blocked", nil)}
	b := &fakeBrowser{err: models.NewScrapeError(models.ErrCodeBlockedByChallenge, "blocked", nil)}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story"}
	req.Defaults(25*time.Second, 3)

	result, blocked, err := o.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no extract result, got %+v", result)
	}
	if blocked == nil {
		t.Fatalf("expected a blocked result")
	}
	if blocked.Domain != "example.com" {
		t.Fatalf("expected domain example.com, got %q", blocked.Domain)
	}
}

func TestScrape_BlockedResultCarriesClassifiedProvider(t *testing.T) {
	h := &fakeHTTP{err: models.NewBlockedError("http", "cloudflare", "blocked")}
	b := &fakeBrowser{err: models.NewBlockedError("browser", "cloudflare", "blocked")}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story"}
	req.Defaults(25*time.Second, 3)

	_, blocked, err := o.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked == nil {
		t.Fatalf("expected a blocked result")
	}
	if blocked.Provider != "cloudflare" {
		t.Fatalf("expected provider cloudflare, got %q", blocked.Provider)
	}
}

func TestScrape_BlockedResultFallsBackToUnknownProvider(t *testing.T) {
	h := &fakeHTTP{err: models.NewScrapeError(models.ErrCodeBlockedByChallenge, "blocked", nil)}
	b := &fakeBrowser{err: models.NewScrapeError(models.ErrCodeBlockedByChallenge, "blocked", nil)}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story"}
	req.Defaults(25*time.Second, 3)

	_, blocked, err := o.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked == nil || blocked.Provider != "unknown" {
		t.Fatalf("expected fallback provider unknown, got %+v", blocked)
	}
}

func TestScrape_DeadlineExceededBeforePhaseAReturnsTimeout(t *testing.T) {
	h := &fakeHTTP{}
	b := &fakeBrowser{}
	o := testOrchestrator(h, b)

	req := &models.ScrapeRequest{URL: "https://example.com/story", Deadline: time.Now().Add(-1 * time.Second)}

	_, _, err := o.Scrape(context.Background(), req)
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	if h.calls != 0 {
		t.Fatalf("expected http phase to be skipped once deadline has passed, got %d calls", h.calls)
	}
}

func TestPhaseBudget_ClipsToCeilingAndMargin(t *testing.T) {
	deadline := time.Now().Add(30 * time.Second)
	got := phaseBudget(deadline, 3*time.Second, 18*time.Second)
	if got != 18*time.Second {
		t.Fatalf("expected budget clipped to ceiling 18s, got %v", got)
	}

	deadline = time.Now().Add(10 * time.Second)
	got = phaseBudget(deadline, 3*time.Second, 18*time.Second)
	if got > 7*time.Second || got < 6500*time.Millisecond {
		t.Fatalf("expected budget near remaining-margin (~7s), got %v", got)
	}

	deadline = time.Now().Add(1 * time.Second)
	got = phaseBudget(deadline, 3*time.Second, 18*time.Second)
	if got != 0 {
		t.Fatalf("expected zero budget once margin exceeds remaining time, got %v", got)
	}
}
