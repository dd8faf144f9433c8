package feed

import (
	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/types"
)

// RegisterRoutes registers the RSS feed route
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies) {
	engine.GET("/feed.xml", Get(deps))
}
