package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/azh05/Recapsule/internal/models"
)

// PayloadKeyEpisodeUUID is the payload field that ties a generation job to
// its episode record.
const PayloadKeyEpisodeUUID = "episode_uuid"

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) EnqueueJob(ctx context.Context, jobType models.JobType, payload models.JobPayload) (*models.Job, error) {
	job := &models.Job{
		Type:    jobType,
		Status:  models.JobStatusPending,
		Payload: payload,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	log.Printf("[DEBUG] Enqueued %s job ID %d", jobType, job.ID)

	return job, nil
}

// EnqueueEpisodeGeneration schedules generation for an episode. If a live
// job for the episode already exists it is returned instead of enqueueing a
// duplicate, so one episode never has two orchestrators.
func (s *service) EnqueueEpisodeGeneration(ctx context.Context, episodeUUID string) (*models.Job, error) {
	if episodeUUID == "" {
		return nil, fmt.Errorf("episode UUID cannot be empty")
	}

	existing, err := s.repo.GetJobByTypeAndPayload(ctx, models.JobTypeEpisodeGeneration, PayloadKeyEpisodeUUID, episodeUUID)
	if err == nil && existing != nil && !existing.IsTerminal() {
		log.Printf("[DEBUG] Generation job already exists for episode %s (ID: %d, Status: %s)",
			episodeUUID, existing.ID, existing.Status)
		return existing, nil
	}

	return s.EnqueueJob(ctx, models.JobTypeEpisodeGeneration, models.JobPayload{
		PayloadKeyEpisodeUUID: episodeUUID,
	})
}

func (s *service) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

func (s *service) GetJobForEpisode(ctx context.Context, episodeUUID string) (*models.Job, error) {
	job, err := s.repo.GetJobByTypeAndPayload(ctx, models.JobTypeEpisodeGeneration, PayloadKeyEpisodeUUID, episodeUUID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting job for episode: %w", err)
	}
	return job, nil
}

func (s *service) ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error) {
	job, err := s.repo.ClaimNextJob(ctx, workerID, jobTypes)
	if err != nil {
		if errors.Is(err, ErrNoJobsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	log.Printf("[DEBUG] Worker %s claimed %s job ID %d", workerID, job.Type, job.ID)

	return job, nil
}

func (s *service) CompleteJob(ctx context.Context, jobID uint) error {
	if err := s.repo.CompleteJob(ctx, jobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("completing job: %w", err)
	}

	log.Printf("[DEBUG] Job %d completed successfully", jobID)

	return nil
}

// FailJob records the failure on the job row. Stage-classified errors keep
// their stage; anything else is filed under system.
func (s *service) FailJob(ctx context.Context, jobID uint, jobErr error) error {
	stage := models.StageSystem
	var stageErr *models.StageError
	if errors.As(jobErr, &stageErr) {
		stage = stageErr.Stage
	}

	if err := s.repo.FailJob(ctx, jobID, jobErr.Error(), string(stage)); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("failing job: %w", err)
	}

	log.Printf("[ERROR] Job %d failed in %s stage: %s", jobID, stage, jobErr.Error())

	return nil
}

func (s *service) CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 7
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteOldJobs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up old jobs: %w", err)
	}

	if deleted > 0 {
		log.Printf("[INFO] Cleaned up %d jobs older than %d days", deleted, retentionDays)
	}

	return deleted, nil
}
