package types

import (
	"github.com/azh05/Recapsule/internal/database"
	"github.com/azh05/Recapsule/internal/services/cache"
	"github.com/azh05/Recapsule/internal/services/episodes"
	"github.com/azh05/Recapsule/internal/services/jobs"
	"github.com/azh05/Recapsule/internal/services/workers"
	"github.com/azh05/Recapsule/pkg/config"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	EpisodeService episodes.EpisodeService
	JobService     jobs.Service
	WorkerPool     *workers.WorkerPool
	FeedCache      cache.Cache
	Config         *config.Config
}
