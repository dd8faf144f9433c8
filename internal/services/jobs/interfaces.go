package jobs

import (
	"context"

	"github.com/azh05/Recapsule/internal/models"
)

// Service defines the business logic interface for job operations
type Service interface {
	// Enqueue operations
	EnqueueJob(ctx context.Context, jobType models.JobType, payload models.JobPayload) (*models.Job, error)
	EnqueueEpisodeGeneration(ctx context.Context, episodeUUID string) (*models.Job, error)

	// Status and retrieval
	GetJob(ctx context.Context, jobID uint) (*models.Job, error)
	GetJobForEpisode(ctx context.Context, episodeUUID string) (*models.Job, error)

	// Worker operations (used by worker pool)
	ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error)
	CompleteJob(ctx context.Context, jobID uint) error
	FailJob(ctx context.Context, jobID uint, err error) error

	// Maintenance
	CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error)
}
