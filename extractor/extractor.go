// Package extractor implements the ArticleExtractor: title, description,
// and structured body text resolution from an HTML document (§4.5).
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	nurl "net/url"

	"golang.org/x/net/html"
)

// minContentLength is the minimum TextContent length for readability output
// to be trusted; below this the trafilatura pass, then the fallback container
// path, is tried instead.
const minContentLength = 50

// contentSelectors are tried in order for the fallback container path.
var contentSelectors = []string{
	"article", "main", "[role='main']", ".content", ".post-content",
	".entry-content", ".article-content", ".story-content",
}

// Extracted is the result of Extract: title/description/content plus the
// metadata the ambient stack (§15) layers on top of the core contract.
type Extracted struct {
	Title       string
	Description string
	Content     string
	ContentHTML string // the extracted subtree, for markdown/html output formats
	Author      string
	PublishedAt string
	SiteName    string
	Language    string
}

// Extractor produces Extracted from raw HTML and a base URL for relative
// link/image resolution.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract implements the §4.5 contract: text-only, whitespace-normalized
// title/description/content, plus supplemental byline/date/site metadata.
func (e *Extractor) Extract(rawHTML, baseURL string) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	result := &Extracted{
		Title:       resolveTitle(doc),
		Description: resolveDescription(doc),
		Author:      resolveAuthor(doc),
		PublishedAt: resolveDate(doc),
	}

	content, contentHTML, siteName, lang := e.resolveContent(rawHTML, baseURL, doc)
	result.Content = content
	result.ContentHTML = contentHTML
	result.SiteName = siteName
	result.Language = lang

	return result, nil
}

// resolveContent runs a three-step cascade: readability's text is used when
// it reaches minContentLength; otherwise trafilatura's text is used when it
// reaches minContentLength; otherwise the first matching container. The
// outputs are not compared by length; the first step that passes wins.
func (e *Extractor) resolveContent(rawHTML, baseURL string, doc *goquery.Document) (content, contentHTML, siteName, lang string) {
	parsedURL, _ := nurl.Parse(baseURL)

	var readabilityText, readabilityHTML string
	if parsedURL != nil {
		article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
		if err == nil {
			siteName = article.SiteName
			lang = article.Language
			if node, perr := html.Parse(strings.NewReader(article.Content)); perr == nil {
				readabilityText = sanitizeContent(structuredText(node))
				readabilityHTML = article.Content
			}
		}
	}

	if len(readabilityText) >= minContentLength {
		return readabilityText, readabilityHTML, siteName, lang
	}

	// Cross-check with trafilatura before falling back to the raw
	// container path: some documents that beat go-readability's threshold
	// poorly still yield a clean extraction under trafilatura's algorithm.
	if trafilaturaText, trafilaturaHTML := extractWithTrafilatura(rawHTML); len(trafilaturaText) >= minContentLength {
		return trafilaturaText, trafilaturaHTML, siteName, lang
	}

	text, containerHTML := fallbackContainerText(doc)
	return text, containerHTML, siteName, lang
}

// extractWithTrafilatura runs a secondary extraction algorithm and converts
// its result subtree to the same structured-text shape as the primary path.
func extractWithTrafilatura(rawHTML string) (text, contentHTML string) {
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{EnableFallback: true})
	if err != nil || result == nil || result.ContentNode == nil {
		return "", ""
	}
	var buf strings.Builder
	_ = html.Render(&buf, result.ContentNode)
	return sanitizeContent(structuredText(result.ContentNode)), buf.String()
}

// fallbackContainerText implements §4.5's fallback path: the first matching
// container from contentSelectors, else <body>, with script/style/nav/
// header/footer removed before extracting raw text.
func fallbackContainerText(doc *goquery.Document) (text, contentHTML string) {
	var container *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			container = s.First()
			break
		}
	}
	if container == nil {
		container = doc.Find("body")
	}
	clone := container.Clone()
	clone.Find("script, style, nav, header, footer").Remove()
	outer, _ := goquery.OuterHtml(clone)
	return sanitizeContent(clone.Text()), outer
}

func resolveTitle(doc *goquery.Document) string {
	if v, ok := metaContent(doc, "property", "og:title"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := metaContent(doc, "name", "twitter:title"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		if t := strings.TrimSpace(h1.Text()); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func resolveDescription(doc *goquery.Document) string {
	if v, ok := metaContent(doc, "property", "og:description"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := metaContent(doc, "name", "twitter:description"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := metaContent(doc, "name", "description"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	var found string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) >= 50 && len(text) <= 300 {
			found = text
			return false
		}
		return true
	})
	return found
}

func resolveAuthor(doc *goquery.Document) string {
	if v, ok := metaContent(doc, "name", "author"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := metaContent(doc, "property", "article:author"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return ""
}

func resolveDate(doc *goquery.Document) string {
	if v, ok := metaContent(doc, "property", "article:published_time"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if t := doc.Find("time[datetime]").First(); t.Length() > 0 {
		if v, ok := t.Attr("datetime"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, attr, value string) (string, bool) {
	sel := doc.Find("meta[" + attr + "='" + value + "']").First()
	if sel.Length() == 0 {
		return "", false
	}
	v, ok := sel.Attr("content")
	return v, ok
}
