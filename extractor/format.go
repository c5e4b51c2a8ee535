package extractor

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

// ugcPolicy allows a small set of structural elements for the "html" output
// format, keeping the sanitizer's guarantee that no scripts/styles/event
// handlers ever reach a caller.
var ugcPolicy = bluemonday.UGCPolicy()

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Render converts an Extracted result's content into the requested output
// format: "text" (default, the §4.5 structured/sanitized text), "markdown",
// or "html".
func Render(e *Extracted, format, baseURL string) (string, error) {
	switch format {
	case "markdown":
		if e.ContentHTML == "" {
			return e.Content, nil
		}
		out, err := mdConverter.ConvertString(e.ContentHTML, converter.WithDomain(baseURL))
		if err != nil {
			return "", err
		}
		return out, nil
	case "html":
		if e.ContentHTML == "" {
			return e.Content, nil
		}
		return ugcPolicy.Sanitize(e.ContentHTML), nil
	default:
		return e.Content, nil
	}
}
