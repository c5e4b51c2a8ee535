package models

import "time"

// FetchOutcome is what a fetch phase (HTTP or browser) hands back to the
// Orchestrator on success.
type FetchOutcome struct {
	HTML     []byte
	FinalURL string
	Status   int
	Phase    string // "http" | "browser"
}

// ImageCandidate is discovered by ImageSelector and mutated in place by its
// scoring and filtering passes.
type ImageCandidate struct {
	URL            string
	Width          int // 0 means unknown
	Height         int // 0 means unknown
	InArticleScope bool
	BadHint        bool
	Source         string // "og" | "img"
	Score          float64
	Area           int
}

// Metadata is attached to every ExtractResult and BlockedResult.
type Metadata struct {
	URL          string    `json:"url"`
	ScrapedAt    time.Time `json:"scrapedAt"`
	DurationMs   int64     `json:"durationMs"`
	Author       string    `json:"author,omitempty"`
	PublishedAt  string    `json:"publishedAt,omitempty"`
	QualityScore int       `json:"qualityScore,omitempty"`
	EstTokens    int       `json:"estimatedTokens,omitempty"`
	ReadingSecs  int       `json:"readingTimeSeconds,omitempty"`
}

// ExtractResult is the sole entity that escapes a successful request.
type ExtractResult struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	Images      []string `json:"images"`
	Metadata    Metadata `json:"metadata"`
}

// BlockedResult is the terminal outcome when both phases end in a detected
// anti-bot challenge.
type BlockedResult struct {
	Provider string   `json:"provider"`
	Domain   string   `json:"domain"`
	Metadata Metadata `json:"metadata"`
}
