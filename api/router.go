// Package api builds the Gin router for the article-extraction service.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/purify/api/handler"
	"github.com/use-agent/purify/config"
	"github.com/use-agent/purify/orchestrator"
)

// NewRouter wires the health and scrape endpoints behind Gin's recovery
// and logging middleware.
func NewRouter(o *orchestrator.Orchestrator, cfg *config.Config, startTime time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/healthz", handler.Health(startTime))

	v1 := r.Group("/v1")
	v1.POST("/scrape", handler.Scrape(o, cfg.Scraper))

	return r
}
