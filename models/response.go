package models

// ScrapeResponse is the JSON envelope POST /v1/scrape returns on both
// success and failure.
type ScrapeResponse struct {
	Success bool           `json:"success"`
	Result  *ExtractResult `json:"result,omitempty"`
	Blocked *BlockedResult `json:"blocked,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
