package episodes

import (
	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/types"
)

// RegisterRoutes registers episode routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// POST /api/v1/episodes - Create an episode and start generation
	router.POST("", PostCreate(deps))

	// GET /api/v1/episodes - List episodes with pagination and search
	router.GET("", GetAll(deps))

	// GET /api/v1/episodes/:id - Get episode details by UUID
	router.GET("/:id", GetByID(deps))
}
