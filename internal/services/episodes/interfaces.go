package episodes

import (
	"context"

	"github.com/azh05/Recapsule/internal/models"
)

// ListParams controls pagination and filtering for episode listings
type ListParams struct {
	Limit  int
	Offset int
	Search string
}

// EpisodeRepository defines the interface for episode data persistence
type EpisodeRepository interface {
	CreateEpisode(ctx context.Context, episode *models.Episode) error
	GetEpisodeByUUID(ctx context.Context, uuid string) (*models.Episode, error)
	ListEpisodes(ctx context.Context, params ListParams) ([]models.Episode, int64, error)
	ListCompletedEpisodes(ctx context.Context, limit int) ([]models.Episode, error)
	UpdateEpisodeFields(ctx context.Context, uuid string, fields map[string]interface{}) error
}

// Enqueuer schedules background generation work for a newly created episode
type Enqueuer interface {
	EnqueueEpisodeGeneration(ctx context.Context, episodeUUID string) (*models.Job, error)
}

// Categorizer classifies a topic into a category, best effort
type Categorizer interface {
	Categorize(ctx context.Context, topic string) string
}

// EpisodeService defines the business logic interface for episode operations
type EpisodeService interface {
	CreateEpisode(ctx context.Context, topic string, tone models.ToneStyle) (*models.Episode, error)
	GetEpisodeByUUID(ctx context.Context, uuid string) (*models.Episode, error)
	ListEpisodes(ctx context.Context, params ListParams) ([]models.Episode, int64, error)
	ListCompletedEpisodes(ctx context.Context, limit int) ([]models.Episode, error)
}
