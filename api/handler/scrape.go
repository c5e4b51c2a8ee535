package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/models"
	"github.com/use-agent/purify/orchestrator"
)

// Scrape returns a handler for POST /v1/scrape: parse and validate the
// request, apply defaults, run the pipeline, and map its outcome to a
// ScrapeResponse.
func Scrape(o *orchestrator.Orchestrator, cfg config.ScraperConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidURL, Message: err.Error()},
			})
			return
		}
		req.Defaults(cfg.DefaultRequestTimeout, cfg.DefaultImageLimit)

		result, blocked, err := o.Scrape(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		if blocked != nil {
			c.JSON(http.StatusUnavailableForLegalReasons, models.ScrapeResponse{Success: false, Blocked: blocked})
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{Success: true, Result: result})
	}
}

func respondError(c *gin.Context, err error) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "internal error", err)
	}
	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates an internal error code to an HTTP status.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case models.ErrCodeBlockedByChallenge:
		return http.StatusUnavailableForLegalReasons
	default:
		return http.StatusInternalServerError
	}
}

// Health returns a handler for GET /healthz.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: "0.1.0",
		})
	}
}
