package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/azh05/Recapsule/internal/models"
)

// Repository errors
var (
	ErrJobNotFound     = errors.New("job not found")
	ErrNoJobsAvailable = errors.New("no jobs available")
)

// Repository defines the interface for job persistence
type Repository interface {
	// Create operations
	CreateJob(ctx context.Context, job *models.Job) error

	// Read operations
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	GetJobByTypeAndPayload(ctx context.Context, jobType models.JobType, key, value string) (*models.Job, error)
	GetJobsByStatus(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error)

	// Update operations
	ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error)
	CompleteJob(ctx context.Context, jobID uint) error
	FailJob(ctx context.Context, jobID uint, errorMsg, errorStage string) error

	// Delete operations
	DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new job repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// CreateJob creates a new job
func (r *repository) CreateJob(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJob retrieves a job by ID
func (r *repository) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).First(&job, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return &job, nil
}

// GetJobByTypeAndPayload finds the newest job matching a payload value
func (r *repository) GetJobByTypeAndPayload(ctx context.Context, jobType models.JobType, key, value string) (*models.Job, error) {
	var job models.Job

	// Use JSON extract for SQLite
	query := r.db.WithContext(ctx).
		Where("type = ?", jobType).
		Where("json_extract(payload, ?) = ?", "$."+key, value).
		Order("created_at DESC").
		First(&job)

	if err := query.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job by type and payload: %w", err)
	}

	return &job, nil
}

// GetJobsByStatus retrieves jobs by status
func (r *repository) GetJobsByStatus(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error) {
	var jobs []*models.Job
	query := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&jobs).Error
	return jobs, err
}

// ClaimNextJob atomically claims the oldest pending job for a worker. The
// transaction guarantees a job is handed to exactly one worker, which in
// turn means an episode only ever has one orchestrator running it.
func (r *repository) ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error) {
	var job models.Job

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", models.JobStatusPending).
			Order("created_at ASC")

		if len(jobTypes) > 0 {
			query = query.Where("type IN ?", jobTypes)
		}

		if err := query.First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoJobsAvailable
			}
			return fmt.Errorf("finding claimable job: %w", err)
		}

		now := time.Now()
		job.Status = models.JobStatusProcessing
		job.WorkerID = workerID
		job.StartedAt = &now

		if err := tx.Save(&job).Error; err != nil {
			return fmt.Errorf("claiming job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// CompleteJob marks a job as completed
func (r *repository) CompleteJob(ctx context.Context, jobID uint) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       models.JobStatusCompleted,
			"completed_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("completing job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// FailJob marks a job as failed with a diagnostic and the stage it died in
func (r *repository) FailJob(ctx context.Context, jobID uint, errorMsg, errorStage string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       models.JobStatusFailed,
			"error":        errorMsg,
			"error_stage":  errorStage,
			"completed_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failing job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// DeleteOldJobs removes terminal jobs older than the cutoff
func (r *repository) DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("status IN ?", []models.JobStatus{models.JobStatusCompleted, models.JobStatusFailed}).
		Where("completed_at < ?", olderThan).
		Delete(&models.Job{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting old jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
