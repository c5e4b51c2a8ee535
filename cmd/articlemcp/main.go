// Command articlemcp exposes the article-extraction pipeline as a single
// MCP tool over stdio.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/models"
	"github.com/use-agent/purify/orchestrator"
)

func main() {
	cfg := config.Load()
	o := orchestrator.New(cfg)

	s := server.NewMCPServer(
		"articlemcp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_article",
		mcp.WithDescription("Fetch a web page and return its extracted article content (title, description, body, images). Falls back to a headless browser when the page is JavaScript-rendered or behind an anti-bot challenge."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the article to scrape"),
		),
		mcp.WithString("output_format",
			mcp.Description("Content output format: 'text' (default), 'markdown', or 'html'"),
			mcp.Enum("text", "markdown", "html"),
		),
		mcp.WithNumber("image_limit",
			mcp.Description("Maximum number of images to return (default: 3)"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeArticle(o, cfg))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// imageLimitArg pulls the optional numeric image_limit argument out of the
// raw argument map; mcp-go decodes JSON numbers as float64.
func imageLimitArg(request mcp.CallToolRequest) int {
	args := request.GetArguments()
	v, ok := args["image_limit"]
	if !ok {
		return 0
	}
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func handleScrapeArticle(o *orchestrator.Orchestrator, cfg *config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		req := &models.ScrapeRequest{
			URL:          url,
			OutputFormat: request.GetString("output_format", ""),
			ImageLimit:   imageLimitArg(request),
		}
		req.Defaults(cfg.Scraper.DefaultRequestTimeout, cfg.Scraper.DefaultImageLimit)

		reqCtx, cancel := context.WithDeadline(ctx, req.Deadline)
		defer cancel()

		result, blocked, err := o.Scrape(reqCtx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if blocked != nil {
			return mcp.NewToolResultError(fmt.Sprintf("blocked by %s challenge on %s", blocked.Provider, blocked.Domain)), nil
		}

		text := fmt.Sprintf("Title: %s\nSource: %s\n\n%s", result.Title, result.Metadata.URL, result.Content)
		if len(result.Images) > 0 {
			text += "\n\nImages:\n"
			for _, img := range result.Images {
				text += img + "\n"
			}
		}
		return mcp.NewToolResultText(text), nil
	}
}
