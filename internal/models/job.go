package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JobStatus represents the status of a job in the queue
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobType represents the type of job to be processed
type JobType string

const (
	JobTypeEpisodeGeneration JobType = "episode_generation"
)

// StageKind classifies which pipeline stage a job error originated from
type StageKind string

const (
	StageResearch   StageKind = "research"
	StageScript     StageKind = "script"
	StageSynthesis  StageKind = "synthesis"
	StageStitching  StageKind = "stitching"
	StageSystem     StageKind = "system"
	StageValidation StageKind = "validation"
)

// StageError carries the failing stage alongside the underlying error so the
// worker can record a classified diagnostic on the job row.
type StageError struct {
	Stage   StageKind
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a stage-classified error
func NewStageError(stage StageKind, message string, err error) *StageError {
	return &StageError{Stage: stage, Message: message, Err: err}
}

// Job represents a background job in the queue. Episode generation runs to
// completion or failure in a single attempt; a new episode must be created
// to retry.
type Job struct {
	gorm.Model
	Type        JobType    `json:"type" gorm:"not null;index:idx_jobs_type_status"`
	Status      JobStatus  `json:"status" gorm:"default:'pending';index:idx_jobs_type_status"`
	Payload     JobPayload `json:"payload" gorm:"type:json"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	WorkerID    string     `json:"worker_id,omitempty"`

	Error      string `json:"error,omitempty" gorm:"size:2000"`
	ErrorStage string `json:"error_stage,omitempty" gorm:"size:20"`
}

// JobPayload represents the input data for a job
type JobPayload map[string]interface{}

// Value implements driver.Valuer interface for JobPayload
func (p JobPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for JobPayload
func (p *JobPayload) Scan(value interface{}) error {
	if value == nil {
		*p = make(JobPayload)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, p)
}

// GetPayloadString safely retrieves a string value from the payload
func (j *Job) GetPayloadString(key string) (string, bool) {
	if j.Payload == nil {
		return "", false
	}
	val, ok := j.Payload[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// IsTerminal returns true if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// CanProcess returns true if the job is ready to be claimed
func (j *Job) CanProcess() bool {
	return j.Status == JobStatusPending
}

// TableName specifies the table name for GORM
func (Job) TableName() string {
	return "jobs"
}
