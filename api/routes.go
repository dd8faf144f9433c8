package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/episodes"
	"github.com/azh05/Recapsule/api/feed"
	"github.com/azh05/Recapsule/api/health"
	"github.com/azh05/Recapsule/api/types"
	"github.com/azh05/Recapsule/api/version"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	if deps.EpisodeService != nil {
		feed.RegisterRoutes(engine, deps)
	}

	// Finished audio is served straight from disk when local storage is in use
	if deps.Config != nil && deps.Config.Storage.Backend == "local" {
		engine.Static("/audio", deps.Config.Storage.AudioDir)
	}

	engine.NoRoute(NotFoundHandler())

	// API v1 routes
	v1 := engine.Group("/api/v1")

	if deps.EpisodeService != nil {
		// Episode creation fans out to LLM and TTS providers, so the group
		// gets tighter limits than a read-only API would (5 req/s, burst 10)
		episodeGroup := v1.Group("/episodes")
		episodeGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 5, 10))
		episodes.RegisterRoutes(episodeGroup, deps)
	}

	return nil
}

// NotFoundHandler returns a JSON 404 for unknown routes
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	}
}
