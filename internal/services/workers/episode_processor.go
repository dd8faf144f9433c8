package workers

import (
	"context"
	"fmt"

	"github.com/azh05/Recapsule/internal/models"
	"github.com/azh05/Recapsule/internal/services/jobs"
)

// EpisodeRunner runs the generation pipeline for one episode
type EpisodeRunner interface {
	Run(ctx context.Context, episodeUUID string) error
}

// EpisodeProcessor processes episode generation jobs by handing the episode
// to the pipeline orchestrator.
type EpisodeProcessor struct {
	runner EpisodeRunner
}

// NewEpisodeProcessor creates a processor for episode generation jobs
func NewEpisodeProcessor(runner EpisodeRunner) *EpisodeProcessor {
	return &EpisodeProcessor{runner: runner}
}

// CanProcess returns true for episode generation jobs
func (p *EpisodeProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeEpisodeGeneration
}

// ProcessJob extracts the episode UUID from the job payload and runs the
// pipeline. The orchestrator persists the episode-level outcome itself; the
// returned error only determines the job row's fate.
func (p *EpisodeProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	episodeUUID, ok := job.GetPayloadString(jobs.PayloadKeyEpisodeUUID)
	if !ok || episodeUUID == "" {
		return models.NewStageError(models.StageSystem,
			fmt.Sprintf("job %d has no %s in payload", job.ID, jobs.PayloadKeyEpisodeUUID), nil)
	}

	return p.runner.Run(ctx, episodeUUID)
}
