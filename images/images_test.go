package images

import (
	"testing"

	"github.com/use-agent/purify/config"
)

func testImageConfig() config.ImageConfig {
	return config.ImageConfig{
		MinShortSide:   300,
		MinArea:        140000,
		MinAspect:      0.5,
		MaxAspect:      2.6,
		RatioTol:       0.09,
		RatioWhitelist: []float64{1.333, 1.5, 1.6, 1.667, 1.777, 1.85, 2},
		AdSizes: [][2]int{
			{300, 250}, {336, 280}, {728, 90}, {300, 600}, {320, 50},
			{160, 600}, {320, 100}, {970, 250}, {970, 90}, {250, 250},
			{200, 200}, {180, 150}, {120, 600}, {300, 1050}, {320, 480},
			{468, 60}, {234, 60},
		},
	}
}

func TestSelect_OGImageBeatsInArticleAndFilteredOut(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://cdn.example.com/hero-1200x630.jpg"/>
	</head><body>
		<article>
			<img src="https://cdn.example.com/thumb-200x200.jpg"/>
			<p>body text</p>
		</article>
		<aside>
			<img src="https://cdn.example.com/sidebar-1600x900.jpg"/>
		</aside>
	</body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) == 0 {
		t.Fatalf("expected at least one image, got none")
	}
	if got[0] != "https://cdn.example.com/hero-1200x630.jpg" {
		t.Fatalf("expected og:image to rank first, got %q", got[0])
	}
	for _, u := range got {
		if u == "https://cdn.example.com/thumb-200x200.jpg" {
			t.Fatalf("expected undersized in-article image to be filtered out, got it in %v", got)
		}
	}
}

func TestSelect_SrcsetWidthDescriptorPreferredNear1000(t *testing.T) {
	html := `<html><body><article>
		<img srcset="https://cdn.example.com/a-320.jpg 320w, https://cdn.example.com/a-960.jpg 960w, https://cdn.example.com/a-2000.jpg 2000w"/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %v", got)
	}
	if got[0] != "https://cdn.example.com/a-960.jpg" {
		t.Fatalf("expected the 960w entry (closest to 1000), got %q", got[0])
	}
}

func TestSelect_DimensionBackfillFromURL(t *testing.T) {
	html := `<html><body><article>
		<img src="https://cdn.example.com/photo-800x500.jpg"/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) != 1 {
		t.Fatalf("expected dimension-backfilled candidate to pass filters, got %v", got)
	}
}

func TestSelect_AdSizeBlocked(t *testing.T) {
	html := `<html><body><article>
		<img src="https://cdn.example.com/banner.jpg" width="300" height="250"/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) != 0 {
		t.Fatalf("expected ad-size image to be filtered out, got %v", got)
	}
}

func TestSelect_BadHintRequiresLargerMinimum(t *testing.T) {
	html := `<html><body><article>
		<img src="https://cdn.example.com/logo-350x350.jpg" width="350" height="350"/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) != 0 {
		t.Fatalf("expected bad-hint image below 400 short side to be filtered out, got %v", got)
	}
}

func TestSelect_NonImageExtensionIgnored(t *testing.T) {
	html := `<html><body><article>
		<img src="https://cdn.example.com/tracker.gif.php" width="800" height="500"/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) != 0 {
		t.Fatalf("expected non-image extension to be rejected, got %v", got)
	}
}

func TestSelect_DataURIIgnored(t *testing.T) {
	html := `<html><body><article>
		<img src="data:image/png;base64,iVBORw0KGgo="/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 5)
	if len(got) != 0 {
		t.Fatalf("expected data URI to be ignored, got %v", got)
	}
}

func TestSelect_RespectsLimit(t *testing.T) {
	html := `<html><body><article>
		<img src="https://cdn.example.com/one-900x600.jpg"/>
		<img src="https://cdn.example.com/two-900x600.jpg"/>
		<img src="https://cdn.example.com/three-900x600.jpg"/>
	</article></body></html>`

	sel := New(testImageConfig())
	got := sel.Select(html, "https://example.com/story", 2)
	if len(got) != 2 {
		t.Fatalf("expected limit of 2, got %v", got)
	}
}
