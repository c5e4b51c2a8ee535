// Package httpfetch implements the HTTP-first acquisition phase: a
// Chrome-fingerprinted plain HTTP fetch with retry-on-5xx and a concurrent
// alternate-URL race for challenge/blocked responses.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/use-agent/purify/challenge"
	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/models"
)

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only, so Go's http.Transport never has to speak HTTP/2 framing
// over a connection utls negotiated as h2.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// Fetcher retrieves HTML documents over plain HTTP with a Chrome TLS
// fingerprint, and races alternate URLs when the primary is blocked.
type Fetcher struct {
	cfg      config.ScraperConfig
	client   *http.Client
	detector *challenge.Detector
	limiter  *rate.Limiter
}

// New creates a Fetcher configured from cfg. Outbound requests, including
// every leg of the alternate-URL race, are paced through a shared
// token-bucket limiter so a single scrape can't burst a target host.
func New(cfg config.ScraperConfig, detector *challenge.Detector) *Fetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr)
		},
		ForceAttemptHTTP2: false,
	}
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > cfg.MaxRedirects {
				return fmt.Errorf("httpfetch: stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		},
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst)
	return &Fetcher{cfg: cfg, client: client, detector: detector, limiter: limiter}
}

func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("httpfetch: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Referer", "https://www.google.com/")
}

// Fetch performs a single GET against targetURL within budget, applying the
// §4.2 header set, size cap, content-type check, and 5xx retry policy.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var lastErr error
	delay := f.cfg.RetryBaseDelay
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		outcome, err := f.doFetch(ctx, targetURL)
		if err == nil {
			return outcome, nil
		}
		lastErr = err

		se, ok := err.(*models.ScrapeError)
		if !ok || se.Code != models.ErrCodeHTTPError || se.Status < 500 {
			return nil, err
		}
		if attempt == f.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, models.NewTimeoutError("http", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > f.cfg.RetryMaxDelay {
			delay = f.cfg.RetryMaxDelay
		}
	}
	return nil, lastErr
}

func (f *Fetcher) doFetch(ctx context.Context, targetURL string) (*models.FetchOutcome, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, models.NewTimeoutError("http", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidURL, "malformed request URL", err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewTimeoutError("http", err)
		}
		return nil, models.NewScrapeError(models.ErrCodeTransport, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewHTTPError(resp.StatusCode, nil)
	}

	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return nil, models.NewScrapeError(models.ErrCodeNonHTML, "response is not HTML: "+ct, nil)
	}

	limited := io.LimitReader(resp.Body, f.cfg.SizeLimitBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTransport, "read body failed", err)
	}
	if int64(len(body)) > f.cfg.SizeLimitBytes {
		return nil, models.NewScrapeError(models.ErrCodeOversizeHTML, "body exceeds size cap", nil)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &models.FetchOutcome{
		HTML:     body,
		FinalURL: finalURL,
		Status:   resp.StatusCode,
		Phase:    "http",
	}, nil
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml") || ct == ""
}

// FetchWithAlternates implements §4.2's fetchWithAlternates: try the primary
// URL first; if it succeeds and is not a challenge, return it. Otherwise,
// only for qualifying failures, race the deterministic alternates
// concurrently and return the first non-challenged winner.
func (f *Fetcher) FetchWithAlternates(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error) {
	deadline := time.Now().Add(budget)

	outcome, err := f.Fetch(ctx, targetURL, budget)
	if err == nil {
		if !f.detector.IsChallenge(string(outcome.HTML), nil, outcome.Status) {
			return outcome, nil
		}
		provider := f.detector.ClassifyProvider(string(outcome.HTML), nil)
		err = models.NewBlockedError("http", provider, "primary URL served a challenge page")
	}

	if !models.IsAlternateQualifying(err) {
		return nil, err
	}

	alternates := GenerateAlternates(targetURL)
	if len(alternates) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeAllAlternatesFailed, "no alternate URLs available", err)
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil, models.NewTimeoutError("http", nil)
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type raceResult struct {
		outcome *models.FetchOutcome
		err     error
	}
	results := make(chan raceResult, len(alternates))

	g, gctx := errgroup.WithContext(raceCtx)
	for _, alt := range alternates {
		alt := alt
		g.Go(func() error {
			o, aerr := f.Fetch(gctx, alt, remaining)
			if aerr == nil && f.detector.IsChallenge(string(o.HTML), nil, o.Status) {
				provider := f.detector.ClassifyProvider(string(o.HTML), nil)
				aerr = models.NewBlockedError("http", provider, "alternate URL served a challenge page")
				o = nil
			}
			results <- raceResult{outcome: o, err: aerr}
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	var lastErr error = err
	for rr := range results {
		if rr.err != nil {
			// A challenge (on the primary or any leg) is kept over later
			// non-challenge failures, so the wrapped error carries its provider.
			if se, ok := lastErr.(*models.ScrapeError); !ok || se.Code != models.ErrCodeBlockedByChallenge {
				lastErr = rr.err
			}
			continue
		}
		cancel()
		for range results {
			// wait for the cancelled legs to finish
		}
		return rr.outcome, nil
	}

	return nil, models.NewScrapeError(models.ErrCodeAllAlternatesFailed, "all alternate URLs failed", lastErr)
}
