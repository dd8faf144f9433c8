package episodes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/types"
	episodesService "github.com/azh05/Recapsule/internal/services/episodes"
)

// GetAll returns a page of episodes, newest first
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if offset < 0 {
			offset = 0
		}
		search := c.Query("search")

		episodes, total, err := deps.EpisodeService.ListEpisodes(c.Request.Context(), episodesService.ListParams{
			Limit:  limit,
			Offset: offset,
			Search: search,
		})
		if err != nil {
			log.Printf("[ERROR] Failed to list episodes (limit %d, offset %d): %v", limit, offset, err)
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("Failed to fetch episodes"))
			return
		}

		c.JSON(http.StatusOK, types.NewEpisodeListResponse(episodes, total, limit, offset))
	}
}
