// Package browser implements the headless-browser fallback acquisition
// phase: a stealth-spoofed navigation with per-request interception,
// launched and torn down fresh for every call (§4.3 — pooling is
// explicitly not in scope).
package browser

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/purify/challenge"
	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/httpfetch"
	"github.com/use-agent/purify/models"
)

// Fetcher drives a fresh headless browser instance per call.
type Fetcher struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	detector   *challenge.Detector
}

// New creates a Fetcher.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, detector *challenge.Detector) *Fetcher {
	return &Fetcher{browserCfg: browserCfg, scraperCfg: scraperCfg, detector: detector}
}

// FetchWithBrowser drives the browser through §4.3's navigation contract:
// launch, spoof identity, install interception, navigate with a
// networkidle-style wait; on failure or challenge, retry with the §4.2
// alternates using a faster domcontentloaded-style wait. The browser is
// torn down on every exit path.
func (f *Fetcher) FetchWithBrowser(ctx context.Context, targetURL string, budget time.Duration) (*models.FetchOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	browser, cleanup, err := f.launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTransport, "failed to launch browser", err)
	}
	defer cleanup()

	outcome, err := f.navigate(ctx, browser, targetURL, true)
	if err == nil {
		if !f.detector.IsChallenge(string(outcome.HTML), nil, outcome.Status) {
			return outcome, nil
		}
		provider := f.detector.ClassifyProvider(string(outcome.HTML), nil)
		err = models.NewBlockedError("browser", provider, "browser navigation landed on a challenge page")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, models.NewTimeoutError("browser", ctx.Err())
	}

	for _, alt := range httpfetch.GenerateAlternates(targetURL) {
		if ctx.Err() != nil {
			return nil, models.NewTimeoutError("browser", ctx.Err())
		}
		altOutcome, altErr := f.navigate(ctx, browser, alt, false)
		if altErr != nil {
			continue
		}
		if f.detector.IsChallenge(string(altOutcome.HTML), nil, altOutcome.Status) {
			continue
		}
		return altOutcome, nil
	}

	if outcome != nil {
		if provider := f.detector.ClassifyProvider(string(outcome.HTML), nil); provider != "" {
			return nil, models.NewBlockedError("browser", provider, "challenge detected in browser phase for "+hostOf(targetURL))
		}
	}
	return nil, err
}

func (f *Fetcher) launch() (*rod.Browser, func(), error) {
	l := launcher.New().
		Headless(f.browserCfg.Headless).
		NoSandbox(f.browserCfg.NoSandbox)

	if f.browserCfg.BrowserBin != "" {
		l = l.Bin(f.browserCfg.BrowserBin)
	}
	if f.browserCfg.DisableGPU {
		l.Set(flags.Flag("disable-gpu"))
	}
	if f.browserCfg.DisableDevShm {
		l.Set(flags.Flag("disable-dev-shm-usage"))
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, func() {}, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, func() {}, err
	}

	cleanup := func() {
		_ = browser.Close()
	}
	return browser, cleanup, nil
}

// navigate drives one navigation attempt. When networkIdle is true it uses
// the slower, more thorough networkidle-style wait; otherwise it uses the
// faster domcontentloaded-style wait used for alternate retries.
func (f *Fetcher) navigate(ctx context.Context, browser *rod.Browser, targetURL string, networkIdle bool) (*models.FetchOutcome, error) {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = page.Close()
	}()

	_, _ = page.EvalOnNewDocument(stealth.JS)

	_ = proto.EmulationSetTimezoneOverride{TimezoneID: f.browserCfg.Timezone}.Call(page)
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  f.browserCfg.ViewportWidth,
		Height: f.browserCfg.ViewportHeight,
	})

	_ = proto.NetworkSetUserAgentOverride{
		UserAgent: f.scraperCfg.UserAgent,
		UserAgentMetadata: &proto.EmulationUserAgentMetadata{
			Platform:        "Windows",
			PlatformVersion: "10.0",
			Brands: []*proto.EmulationUserAgentBrandVersion{
				{Brand: "Chromium", Version: strconv.Itoa(f.scraperCfg.ChromeMajor)},
				{Brand: "Not_A Brand", Version: "24"},
			},
		},
	}.Call(page)

	router := setupHijack(page, f.browserCfg.TrackerDenylist)
	defer func() { _ = router.Stop() }()

	p := page.Context(ctx)
	if err := p.Navigate(targetURL); err != nil {
		return nil, err
	}

	if networkIdle {
		waitIdle := p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
		waitIdle()
	} else {
		_ = p.WaitDOMStable(200*time.Millisecond, 0.1)
	}

	status := 200
	if res, err := p.Eval(`() => {
		try {
			const e = performance.getEntriesByType("navigation");
			if (e.length > 0) return e[0].responseStatus || 200;
		} catch (err) {}
		return 200;
	}`); err == nil {
		status = res.Value.Int()
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, err
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = targetURL
	}

	return &models.FetchOutcome{
		HTML:     []byte(rawHTML),
		FinalURL: finalURL,
		Status:   status,
		Phase:    "browser",
	}, nil
}

func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
