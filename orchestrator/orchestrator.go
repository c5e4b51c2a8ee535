// Package orchestrator implements the Orchestrator: the top-level Scrape
// operation that sequences the HTTP and browser fetch phases, then hands
// the winning HTML to the extractor and image selector (§4.1).
package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/use-agent/purify/browser"
	"github.com/use-agent/purify/challenge"
	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/extractor"
	"github.com/use-agent/purify/httpfetch"
	"github.com/use-agent/purify/images"
	"github.com/use-agent/purify/models"
)

// httpPhase is the interface Phase A must satisfy; httpfetch.Fetcher is the
// production implementation.
type httpPhase interface {
	FetchWithAlternates(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error)
}

// browserPhase is the interface Phase B must satisfy; browser.Fetcher is
// the production implementation.
type browserPhase interface {
	FetchWithBrowser(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error)
}

// Orchestrator wires the two fetch phases together with extraction and
// image selection.
type Orchestrator struct {
	cfg       config.ScraperConfig
	http      httpPhase
	browser   browserPhase
	extractor *extractor.Extractor
	images    *images.Selector
}

// New builds an Orchestrator from a full Config.
func New(cfg *config.Config) *Orchestrator {
	detector := challenge.New()
	return &Orchestrator{
		cfg:       cfg.Scraper,
		http:      httpfetch.New(cfg.Scraper, detector),
		browser:   browser.New(cfg.Browser, cfg.Scraper, detector),
		extractor: extractor.New(),
		images:    images.New(cfg.Image),
	}
}

// Scrape runs the full two-phase pipeline against req. On success it
// returns an ExtractResult. If both phases end in a detected anti-bot
// challenge, it returns a BlockedResult instead. Any other terminal
// failure is returned as an error: a *models.ScrapeError, except that a
// browser-driver failure in Phase B is returned as the driver's own error.
func (o *Orchestrator) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ExtractResult, *models.BlockedResult, error) {
	start := time.Now()

	outcome, blockedProvider, err := o.fetch(ctx, req.URL, req.Deadline)
	if blockedProvider != "" {
		return nil, &models.BlockedResult{
			Provider: blockedProvider,
			Domain:   hostOf(req.URL),
			Metadata: models.Metadata{
				URL:        req.URL,
				ScrapedAt:  start,
				DurationMs: time.Since(start).Milliseconds(),
			},
		}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	extracted, err := o.extractor.Extract(string(outcome.HTML), outcome.FinalURL)
	if err != nil {
		return nil, nil, models.NewScrapeError(models.ErrCodeExtractionFailed, "content extraction failed", err)
	}

	rendered, err := extractor.Render(extracted, req.OutputFormat, outcome.FinalURL)
	if err != nil {
		return nil, nil, models.NewScrapeError(models.ErrCodeExtractionFailed, "content rendering failed", err)
	}

	imgs := o.images.Select(string(outcome.HTML), outcome.FinalURL, req.ImageLimit)

	result := &models.ExtractResult{
		Title:       extracted.Title,
		Description: extracted.Description,
		Content:     rendered,
		Images:      imgs,
		Metadata: models.Metadata{
			URL:          outcome.FinalURL,
			ScrapedAt:    start,
			DurationMs:   time.Since(start).Milliseconds(),
			Author:       extracted.Author,
			PublishedAt:  extracted.PublishedAt,
			QualityScore: extractor.QualityScore(extracted.Content),
			EstTokens:    extractor.EstimateTokens(extracted.Content),
			ReadingSecs:  extractor.ReadingTimeSeconds(extracted.Content),
		},
	}
	return result, nil, nil
}

// fetch implements §4.1's phase sequencing: Phase A over HTTP, advancing to
// Phase B over a real browser only when the Phase A failure is one of the
// triggers IsRetryablePhaseB recognizes. It returns a non-empty provider
// string when both phases end in a detected challenge.
func (o *Orchestrator) fetch(ctx context.Context, targetURL string, deadline time.Time) (*models.FetchOutcome, string, error) {
	httpBudget := phaseBudget(deadline, o.cfg.DeadlineSafetyMargin, o.cfg.HTTPPhaseBudget)
	if httpBudget <= 0 {
		return nil, "", models.NewTimeoutError("http", context.DeadlineExceeded)
	}

	outcome, httpErr := o.http.FetchWithAlternates(ctx, targetURL, httpBudget)
	if httpErr == nil {
		return outcome, "", nil
	}
	if models.IsFatal(httpErr) {
		return nil, "", httpErr
	}
	if !models.IsRetryablePhaseB(httpErr) {
		return nil, "", httpErr
	}

	browserBudget := phaseBudget(deadline, o.cfg.DeadlineSafetyMargin, o.cfg.BrowserPhaseBudget)
	if browserBudget <= 0 {
		return nil, "", models.NewTimeoutError("browser", context.DeadlineExceeded)
	}

	outcome, browserErr := o.browser.FetchWithBrowser(ctx, targetURL, browserBudget)
	if browserErr == nil {
		return outcome, "", nil
	}

	// The HTTP phase may wrap its challenge error inside AllAlternatesFailed,
	// so walk the whole chain for it.
	var httpSE, browserSE *models.ScrapeError
	for e := httpErr; e != nil && httpSE == nil; e = errors.Unwrap(e) {
		if se, ok := e.(*models.ScrapeError); ok && se.Code == models.ErrCodeBlockedByChallenge {
			httpSE = se
		}
	}
	httpBlocked := httpSE != nil
	browserBlocked := errors.As(browserErr, &browserSE) && browserSE.Code == models.ErrCodeBlockedByChallenge
	if httpBlocked && browserBlocked {
		provider := browserSE.Provider
		if provider == "" {
			provider = httpSE.Provider
		}
		if provider == "" {
			provider = "unknown"
		}
		return nil, provider, nil
	}

	return nil, "", browserErr
}

// phaseBudget computes min(remaining-margin, cap) per §4.1's deadline
// arithmetic, clamped to zero.
func phaseBudget(deadline time.Time, margin, ceiling time.Duration) time.Duration {
	remaining := time.Until(deadline) - margin
	if remaining < 0 {
		return 0
	}
	if remaining > ceiling {
		return ceiling
	}
	return remaining
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
