// Package challenge classifies a fetched document as normal or anti-bot
// challenge using a small set of case-insensitive substring heuristics, any
// one of which is enough. It does not look at content types.
package challenge

import (
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// bodyMarkers are substrings that, if present anywhere in the document body,
// mark it as a challenge page regardless of status code.
var bodyMarkers = []string{
	"attention required",
	"cloudflare ray id",
	"what can i do to resolve this?",
	"why have i been blocked?",
	"performance & security by cloudflare",
	"cf-browser-verification",
	"turnstile",
	"challenge-platform",
}

// titleMarkers are substrings matched against the document's <title>.
var titleMarkers = []string{
	"just a moment",
	"attention required",
	"please wait",
}

// challengeStatuses are the status codes that, combined with a Cloudflare
// header signature, count as a challenge even without a body marker.
var challengeStatuses = map[int]struct{}{
	403: {},
	409: {},
	503: {},
}

// Detector classifies fetched documents. It is stateless and safe for
// concurrent use; the zero value is ready to use.
type Detector struct{}

// New creates a Detector.
func New() *Detector {
	return &Detector{}
}

// IsChallenge reports whether html looks like an anti-bot challenge page.
// headers and status are optional (headers may be nil, status may be 0).
//
// Matching is "lowercase both sides, test standard substring containment" —
// deliberately not the ad-hoc manual loops of the original implementation.
func (d *Detector) IsChallenge(body string, headers http.Header, status int) bool {
	lower := strings.ToLower(body)

	for _, marker := range bodyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	if title := extractTitle(lower); title != "" {
		for _, marker := range titleMarkers {
			if strings.Contains(title, marker) {
				return true
			}
		}
	}

	if headers != nil {
		server := strings.ToLower(headers.Get("Server"))
		hasCFRay := headers.Get("Cf-Ray") != ""
		if strings.Contains(server, "cloudflare") || hasCFRay {
			if _, ok := challengeStatuses[status]; ok {
				return true
			}
		}
	}

	return false
}

// ClassifyProvider returns a short provider tag ("cloudflare") when any
// Cloudflare-specific body, title, or header marker matched, or "" if the
// page does not look like a known provider's challenge.
func (d *Detector) ClassifyProvider(body string, headers http.Header) string {
	lower := strings.ToLower(body)
	for _, marker := range bodyMarkers {
		if strings.Contains(lower, marker) {
			return "cloudflare"
		}
	}
	if title := extractTitle(lower); title != "" {
		for _, marker := range titleMarkers {
			if strings.Contains(title, marker) {
				return "cloudflare"
			}
		}
	}
	if headers != nil && strings.Contains(strings.ToLower(headers.Get("Server")), "cloudflare") {
		return "cloudflare"
	}
	if headers != nil && headers.Get("Cf-Ray") != "" {
		return "cloudflare"
	}
	return ""
}

// extractTitle pulls the lowercase text of the first <title> element out of
// an already-lowercased HTML string.
func extractTitle(lowerHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(lowerHTML))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				return ""
			}
		}
	}
}
