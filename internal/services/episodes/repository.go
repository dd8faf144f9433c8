package episodes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/azh05/Recapsule/internal/models"
)

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements EpisodeRepository interface
var _ EpisodeRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateEpisode(ctx context.Context, episode *models.Episode) error {
	if err := r.db.WithContext(ctx).Create(episode).Error; err != nil {
		return fmt.Errorf("creating episode: %w", err)
	}
	return nil
}

func (r *Repository) GetEpisodeByUUID(ctx context.Context, uuid string) (*models.Episode, error) {
	var episode models.Episode
	if err := r.db.WithContext(ctx).
		Where("uuid = ?", uuid).
		First(&episode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("episode", uuid)
		}
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	return &episode, nil
}

// ListEpisodes returns a page of episodes, newest first, with the unpaged
// total. Search matches the topic case-insensitively.
func (r *Repository) ListEpisodes(ctx context.Context, params ListParams) ([]models.Episode, int64, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.Episode{})
	if params.Search != "" {
		query = query.Where("topic LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting episodes: %w", err)
	}

	var episodes []models.Episode
	if err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&episodes).Error; err != nil {
		return nil, 0, fmt.Errorf("listing episodes: %w", err)
	}

	return episodes, total, nil
}

func (r *Repository) ListCompletedEpisodes(ctx context.Context, limit int) ([]models.Episode, error) {
	if limit <= 0 {
		limit = 50
	}

	var episodes []models.Episode
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing completed episodes: %w", err)
	}
	return episodes, nil
}

// UpdateEpisodeFields applies a partial update to one episode. Zero values
// go through gorm's map update path so clearing a column works.
func (r *Repository) UpdateEpisodeFields(ctx context.Context, uuid string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("uuid = ?", uuid).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating episode: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("episode", uuid)
	}
	return nil
}
