package episodes

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/azh05/Recapsule/internal/models"
)

// Topic length bounds accepted by episode creation
const (
	TopicMinLength = 3
	TopicMaxLength = 200
)

// Service implements the EpisodeService interface with business logic
type Service struct {
	repository  EpisodeRepository
	enqueuer    Enqueuer
	categorizer Categorizer
}

// Ensure Service implements EpisodeService interface
var _ EpisodeService = (*Service)(nil)

// NewService creates a new episode service. The categorizer may be nil, in
// which case episodes keep the default category.
func NewService(repository EpisodeRepository, enqueuer Enqueuer, categorizer Categorizer) *Service {
	return &Service{
		repository:  repository,
		enqueuer:    enqueuer,
		categorizer: categorizer,
	}
}

// CreateEpisode validates the request, persists a pending episode, and
// enqueues its generation job. The episode record is returned immediately;
// clients poll it for progress.
func (s *Service) CreateEpisode(ctx context.Context, topic string, tone models.ToneStyle) (*models.Episode, error) {
	topic = strings.TrimSpace(topic)
	// Bounds are in characters, not bytes; multibyte topics count per rune
	topicLength := utf8.RuneCountInString(topic)
	if topicLength < TopicMinLength {
		return nil, NewValidationError("topic", fmt.Sprintf("must be at least %d characters", TopicMinLength))
	}
	if topicLength > TopicMaxLength {
		return nil, NewValidationError("topic", fmt.Sprintf("must be at most %d characters", TopicMaxLength))
	}

	if tone == "" {
		tone = models.ToneConversational
	}
	if !tone.Valid() {
		return nil, NewValidationError("tone", fmt.Sprintf("unknown tone %q", tone))
	}

	category := "other"
	if s.categorizer != nil {
		category = s.categorizer.Categorize(ctx, topic)
	}

	episode := &models.Episode{
		Topic:    topic,
		Tone:     tone,
		Category: category,
		Status:   models.StatusPending,
	}
	if err := s.repository.CreateEpisode(ctx, episode); err != nil {
		return nil, err
	}

	job, err := s.enqueuer.EnqueueEpisodeGeneration(ctx, episode.UUID)
	if err != nil {
		// Episode exists but will never progress. Mark it failed rather
		// than leaving a permanently pending record.
		failMsg := "failed to schedule generation"
		if updateErr := s.repository.UpdateEpisodeFields(ctx, episode.UUID, map[string]interface{}{
			"status": models.StatusFailed,
			"error":  failMsg,
		}); updateErr != nil {
			log.Printf("[ERROR] Could not mark episode %s as failed after enqueue error: %v", episode.UUID, updateErr)
		}
		return nil, fmt.Errorf("enqueueing generation job: %w", err)
	}

	log.Printf("[INFO] Created episode %s (job %d) for topic %q", episode.UUID, job.ID, topic)
	return episode, nil
}

func (s *Service) GetEpisodeByUUID(ctx context.Context, uuid string) (*models.Episode, error) {
	if uuid == "" {
		return nil, NewValidationError("uuid", "cannot be empty")
	}
	return s.repository.GetEpisodeByUUID(ctx, uuid)
}

func (s *Service) ListEpisodes(ctx context.Context, params ListParams) ([]models.Episode, int64, error) {
	return s.repository.ListEpisodes(ctx, params)
}

func (s *Service) ListCompletedEpisodes(ctx context.Context, limit int) ([]models.Episode, error) {
	return s.repository.ListCompletedEpisodes(ctx, limit)
}
