package extractor

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	runNewlines  = regexp.MustCompile(`\n{3,}`)
	runSpaces    = regexp.MustCompile(`[ \t]{2,}`)
)

// sanitizeContent enforces the content invariant: no HTML tags, no runs of
// ≥3 line breaks, no runs of ≥2 spaces, trimmed. bluemonday's strict policy
// strips any tag markup that survived the structured-text walk (e.g. raw
// HTML fed in from a non-well-formed fragment); the regex passes collapse
// whitespace afterward.
func sanitizeContent(s string) string {
	stripped := strictPolicy.Sanitize(s)
	stripped = runNewlines.ReplaceAllString(stripped, "\n\n")
	stripped = runSpaces.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}
