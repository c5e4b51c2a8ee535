// Command articlecli runs a single scrape from the command line and prints
// the resulting JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/models"
	"github.com/use-agent/purify/orchestrator"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL          string        `arg:"" required:"" help:"Article URL to scrape"`
	Timeout      time.Duration `short:"t" default:"25s" help:"Overall deadline for the scrape"`
	Format       string        `short:"f" default:"text" enum:"text,markdown,html" help:"Content output format"`
	ImageLimit   int           `short:"i" default:"3" help:"Maximum number of images to return"`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("articlecli"),
		kong.Description("Fetch and extract a single article to stdout"),
	)

	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	cfg := config.Load()
	o := orchestrator.New(cfg)

	req := &models.ScrapeRequest{
		URL:          cli.URL,
		ImageLimit:   cli.ImageLimit,
		OutputFormat: cli.Format,
	}
	req.Defaults(cli.Timeout, cfg.Scraper.DefaultImageLimit)

	ctx, cancel := context.WithDeadline(context.Background(), req.Deadline)
	defer cancel()

	result, blocked, err := o.Scrape(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if blocked != nil {
		return enc.Encode(models.ScrapeResponse{Success: false, Blocked: blocked})
	}
	return enc.Encode(models.ScrapeResponse{Success: true, Result: result})
}
