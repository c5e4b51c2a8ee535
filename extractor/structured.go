package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var blockTags = map[string]bool{
	"p": true, "li": true, "blockquote": true,
}

// structuredText implements §4.5's structured text conversion as an
// explicit, statically-typed visitor over a parsed document tree:
// headings get a blank-line prefix and newline suffix, p/li/blockquote get
// a newline prefix, and everything else contributes inline text.
func structuredText(root *html.Node) string {
	var buf strings.Builder
	walk(root, &buf)
	return buf.String()
}

func walk(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode {
		tag := n.Data
		switch {
		case headingTags[tag]:
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(collectText(n))
			buf.WriteString("\n")
			return
		case blockTags[tag]:
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(collectText(n))
			return
		case tag == "script" || tag == "style" || tag == "noscript":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, buf)
	}

	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
}

// collectText gathers all descendant text of n inline, skipping script/style.
func collectText(n *html.Node) string {
	var buf strings.Builder
	var rec func(*html.Node)
	rec = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.TrimSpace(buf.String())
}
