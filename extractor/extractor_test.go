package extractor

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func mustParseFragment(t *testing.T, frag string) *html.Node {
	t.Helper()
	node, err := html.Parse(strings.NewReader(frag))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return node
}

func TestExtract_StaticHappyPath(t *testing.T) {
	html := `<html><head><title>Hello</title><meta property="og:description" content="desc"/></head>
	<body><article><p>Body paragraph one.</p></article></body></html>`

	e := New()
	got, err := e.Extract(html, "https://example.com/story")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Hello" {
		t.Fatalf("expected title Hello, got %q", got.Title)
	}
	if got.Description != "desc" {
		t.Fatalf("expected description desc, got %q", got.Description)
	}
	if !strings.Contains(got.Content, "Body paragraph one.") {
		t.Fatalf("expected content to contain paragraph text, got %q", got.Content)
	}
}

func TestExtract_TitleFallbackOrder(t *testing.T) {
	html := `<html><head><title>Fallback Title</title></head><body><h1>Heading Title</h1><p>text</p></body></html>`
	e := New()
	got, err := e.Extract(html, "https://example.com/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Heading Title" {
		t.Fatalf("expected h1 fallback, got %q", got.Title)
	}
}

func TestSanitizeContent_NoMarkupOrRuns(t *testing.T) {
	in := "<p>hi</p>\n\n\n\nthere    you"
	out := sanitizeContent(in)
	if strings.ContainsAny(out, "<>") {
		t.Fatalf("expected no angle brackets, got %q", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("expected no runs of >=3 newlines, got %q", out)
	}
	if strings.Contains(out, "  ") {
		t.Fatalf("expected no runs of >=2 spaces, got %q", out)
	}
}

func TestStructuredText_HeadingsAndParagraphs(t *testing.T) {
	frag := `<div><h2>Title</h2><p>First.</p><p>Second.</p></div>`
	doc := mustParseFragment(t, frag)
	got := structuredText(doc)
	if !strings.Contains(got, "Title") || !strings.Contains(got, "First.") || !strings.Contains(got, "Second.") {
		t.Fatalf("expected all text present, got %q", got)
	}
}

func TestQualityScore_MonotoneWithLength(t *testing.T) {
	short := QualityScore("short text here")
	long := strings.Repeat("This is a reasonably long sentence for testing. ", 60)
	longScore := QualityScore(long)
	if longScore <= short {
		t.Fatalf("expected longer content to score higher: short=%d long=%d", short, longScore)
	}
}
