package episodes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/types"
	episodesService "github.com/azh05/Recapsule/internal/services/episodes"
)

// GetByID returns a single episode by UUID, including all stage outputs
// produced so far. Clients poll this endpoint to track generation.
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("id")

		episode, err := deps.EpisodeService.GetEpisodeByUUID(c.Request.Context(), uuid)
		if err != nil {
			if episodesService.IsNotFound(err) {
				c.JSON(http.StatusNotFound, types.NewErrorResponse("Episode not found"))
				return
			}
			if episodesService.IsValidation(err) {
				c.JSON(http.StatusBadRequest, types.NewErrorResponse(err.Error()))
				return
			}
			log.Printf("[ERROR] Failed to fetch episode %s: %v", uuid, err)
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("Failed to fetch episode"))
			return
		}

		c.JSON(http.StatusOK, types.NewEpisodeResponse(episode))
	}
}
