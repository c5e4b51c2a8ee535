package models

import "time"

// ScrapeRequest is the input to the Orchestrator: a single URL and an
// effective deadline, plus optional overrides.
type ScrapeRequest struct {
	// URL is the target page. Required, absolute, http/https.
	URL string `json:"url" binding:"required,url"`

	// Deadline is the absolute time by which a result must be returned.
	// Populated from TimeoutMs by Defaults if left zero.
	Deadline time.Time `json:"-"`

	// TimeoutMs is the caller-supplied remaining-time hint, converted to an
	// absolute Deadline at request start.
	TimeoutMs int `json:"timeout_ms,omitempty" binding:"omitempty,min=1"`

	// ImageLimit caps the number of images returned. Default 3.
	ImageLimit int `json:"image_limit,omitempty" binding:"omitempty,min=0,max=20"`

	// OutputFormat controls ExtractResult.Content's rendering: "text"
	// (default), "markdown", or "html".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text markdown html"`
}

// Defaults fills unset fields; a zero Deadline is computed from TimeoutMs
// (or defaultTimeout) anchored at now.
func (r *ScrapeRequest) Defaults(defaultTimeout time.Duration, defaultImageLimit int) {
	if r.Deadline.IsZero() {
		if r.TimeoutMs <= 0 {
			r.Deadline = time.Now().Add(defaultTimeout)
		} else {
			r.Deadline = time.Now().Add(time.Duration(r.TimeoutMs) * time.Millisecond)
		}
	}
	if r.ImageLimit <= 0 {
		r.ImageLimit = defaultImageLimit
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
}
