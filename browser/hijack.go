package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockedResourceTypes are the resource kinds aborted unconditionally during
// browser-phase navigation (§4.3): image, media, font, stylesheet. document
// is never in this set and is always allowed.
var blockedResourceTypes = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage:      {},
	proto.NetworkResourceTypeMedia:      {},
	proto.NetworkResourceTypeFont:       {},
	proto.NetworkResourceTypeStylesheet: {},
}

// isTrackerURL reports whether rawURL contains an entry of the tracker
// denylist as a case-insensitive substring, anywhere in the URL (host, path
// or query).
func isTrackerURL(rawURL string, denylist []string) bool {
	lower := strings.ToLower(rawURL)
	for _, d := range denylist {
		if strings.Contains(lower, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// setupHijack installs the §4.3 interception policy on page and returns the
// running HijackRouter. The caller must call router.Stop() before the page
// is torn down. Interception is installed before navigation and never
// blocks document requests.
func setupHijack(page *rod.Page, denylist []string) *rod.HijackRouter {
	router := page.HijackRequests()

	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if ctx.Request.Type() == proto.NetworkResourceTypeDocument {
			ctx.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		if _, blocked := blockedResourceTypes[ctx.Request.Type()]; blocked {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if isTrackerURL(ctx.Request.URL().String(), denylist) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	go router.Run()
	return router
}
