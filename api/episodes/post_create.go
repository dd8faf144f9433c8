package episodes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/types"
	"github.com/azh05/Recapsule/internal/models"
	episodesService "github.com/azh05/Recapsule/internal/services/episodes"
)

// PostCreate accepts a topic and tone, creates a pending episode, and
// schedules its generation. Returns 201 with the episode to poll.
func PostCreate(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CreateEpisodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("Invalid request body: topic is required"))
			return
		}

		episode, err := deps.EpisodeService.CreateEpisode(c.Request.Context(), req.Topic, models.ToneStyle(req.Tone))
		if err != nil {
			if episodesService.IsValidation(err) {
				c.JSON(http.StatusBadRequest, types.NewErrorResponse(err.Error()))
				return
			}
			log.Printf("[ERROR] Failed to create episode for topic %q: %v", req.Topic, err)
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("Failed to create episode"))
			return
		}

		c.JSON(http.StatusCreated, types.NewEpisodeResponse(episode))
	}
}
