// Package images implements the ImageSelector: candidate discovery,
// dimension inference, filtering, scoring, and top-N selection (§4.6).
package images

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/models"
)

var (
	dimsFromURLRe = regexp.MustCompile(`\b(\d{3,4})x(\d{3,4})\b`)
	widthQueryRe  = regexp.MustCompile(`(?i)[?&](?:w|width)=(\d+)`)
	heightQueryRe = regexp.MustCompile(`(?i)[?&](?:h|height)=(\d+)`)
	widthStyleRe  = regexp.MustCompile(`(?i)width\s*:\s*(\d+)px`)
	heightStyleRe = regexp.MustCompile(`(?i)height\s*:\s*(\d+)px`)
	imageExtRe    = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|avif)(?:$|[?#])`)
)

// Selector discovers, filters, scores, and ranks image candidates.
type Selector struct {
	cfg     config.ImageConfig
	badHint *regexp.Regexp
}

// New creates a Selector configured from cfg.
func New(cfg config.ImageConfig) *Selector {
	pattern := cfg.BadHintPattern
	if pattern == "" {
		pattern = `(?i)(sprite|icon|favicon|logo|avatar|emoji|placeholder|pixel|tracker|ads?|adserver|promo|beacon)`
	}
	return &Selector{cfg: cfg, badHint: regexp.MustCompile(pattern)}
}

// Select implements §4.6's contract: discover candidates, normalize,
// backfill dimensions, filter, score, and return up to limit absolute URLs
// in descending priority.
func (s *Selector) Select(rawHTML, baseURL string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	candidates := s.discover(doc, base)
	candidates = s.normalizeAndDedup(candidates)
	filtered := s.filter(candidates)
	s.score(filtered)
	sortCandidates(filtered)

	seen := make(map[string]struct{}, limit)
	out := make([]string, 0, limit)
	for _, c := range filtered {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c.URL)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// discover runs the og:image and <img> sweep discovery passes.
func (s *Selector) discover(doc *goquery.Document, base *url.URL) []*models.ImageCandidate {
	var candidates []*models.ImageCandidate

	if og := s.discoverOGImage(doc, base); og != nil {
		candidates = append(candidates, og)
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if c := s.discoverImgTag(sel, base); c != nil {
			candidates = append(candidates, c)
		}
	})

	return candidates
}

func (s *Selector) discoverOGImage(doc *goquery.Document, base *url.URL) *models.ImageCandidate {
	sel := doc.Find(`meta[property='og:image']`).First()
	if sel.Length() == 0 {
		sel = doc.Find(`meta[property='og:image:secure_url']`).First()
	}
	if sel.Length() == 0 {
		return nil
	}
	raw, ok := sel.Attr("content")
	if !ok || raw == "" {
		return nil
	}
	resolved := resolveURL(base, raw)
	if resolved == "" {
		return nil
	}

	c := &models.ImageCandidate{URL: resolved, Source: "og", InArticleScope: true}

	if w := metaIntContent(doc, "og:image:width"); w > 0 {
		c.Width = w
	}
	if h := metaIntContent(doc, "og:image:height"); h > 0 {
		c.Height = h
	}
	return c
}

func metaIntContent(doc *goquery.Document, prop string) int {
	sel := doc.Find(`meta[property='` + prop + `']`).First()
	if sel.Length() == 0 {
		return 0
	}
	v, _ := sel.Attr("content")
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

func (s *Selector) discoverImgTag(sel *goquery.Selection, base *url.URL) *models.ImageCandidate {
	raw := firstNonEmptyAttr(sel, "src", "data-src", "data-original", "data-lazy-src")
	if raw == "" {
		if srcset, ok := sel.Attr("srcset"); ok && srcset != "" {
			raw = pickFromSrcset(srcset)
		}
	}
	if raw == "" {
		return nil
	}
	resolved := resolveURL(base, raw)
	if resolved == "" {
		return nil
	}

	outer, _ := goquery.OuterHtml(sel)
	c := &models.ImageCandidate{
		URL:            resolved,
		Source:         "img",
		InArticleScope: isInArticleScope(sel),
		BadHint:        s.badHint.MatchString(outer) || s.badHint.MatchString(raw),
	}

	if w, ok := sel.Attr("width"); ok {
		c.Width, _ = strconv.Atoi(strings.TrimSpace(w))
	}
	if h, ok := sel.Attr("height"); ok {
		c.Height, _ = strconv.Atoi(strings.TrimSpace(h))
	}
	if style, ok := sel.Attr("style"); ok {
		if c.Width == 0 {
			if m := widthStyleRe.FindStringSubmatch(style); m != nil {
				c.Width, _ = strconv.Atoi(m[1])
			}
		}
		if c.Height == 0 {
			if m := heightStyleRe.FindStringSubmatch(style); m != nil {
				c.Height, _ = strconv.Atoi(m[1])
			}
		}
	}

	return c
}

func firstNonEmptyAttr(sel *goquery.Selection, attrs ...string) string {
	for _, a := range attrs {
		if v, ok := sel.Attr(a); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// isInArticleScope reports whether sel has an <article> or <main> ancestor
// at any depth.
func isInArticleScope(sel *goquery.Selection) bool {
	return sel.ParentsFiltered("article, main").Length() > 0
}

func resolveURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// normalizeAndDedup enforces the allowed-extension requirement and dedups
// on absolute URL, backfilling dimensions from the URL when unknown.
func (s *Selector) normalizeAndDedup(candidates []*models.ImageCandidate) []*models.ImageCandidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]*models.ImageCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !imageExtRe.MatchString(c.URL) {
			continue
		}
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true

		if c.Width == 0 || c.Height == 0 {
			backfillFromURL(c)
		}
		if c.Width > 0 && c.Height > 0 {
			c.Area = c.Width * c.Height
		}
		out = append(out, c)
	}
	return out
}

func backfillFromURL(c *models.ImageCandidate) {
	if m := dimsFromURLRe.FindStringSubmatch(c.URL); m != nil {
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		if c.Width == 0 {
			c.Width = w
		}
		if c.Height == 0 {
			c.Height = h
		}
	}
	if c.Width == 0 {
		if m := widthQueryRe.FindStringSubmatch(c.URL); m != nil {
			c.Width, _ = strconv.Atoi(m[1])
		}
	}
	if c.Height == 0 {
		if m := heightQueryRe.FindStringSubmatch(c.URL); m != nil {
			c.Height, _ = strconv.Atoi(m[1])
		}
	}
}
