package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EpisodeStatus represents the pipeline state of an episode
type EpisodeStatus string

const (
	StatusPending         EpisodeStatus = "pending"
	StatusResearching     EpisodeStatus = "researching"
	StatusScriptwriting   EpisodeStatus = "scriptwriting"
	StatusGeneratingAudio EpisodeStatus = "generating_audio"
	StatusStitching       EpisodeStatus = "stitching"
	StatusCompleted       EpisodeStatus = "completed"
	StatusFailed          EpisodeStatus = "failed"
)

// statusTransitions is the exhaustive transition table for the pipeline.
// The success path is strictly ordered; failed is reachable from every
// non-terminal state and, like completed, has no outgoing transitions.
var statusTransitions = map[EpisodeStatus][]EpisodeStatus{
	StatusPending:         {StatusResearching, StatusFailed},
	StatusResearching:     {StatusScriptwriting, StatusFailed},
	StatusScriptwriting:   {StatusGeneratingAudio, StatusFailed},
	StatusGeneratingAudio: {StatusStitching, StatusFailed},
	StatusStitching:       {StatusCompleted, StatusFailed},
	StatusCompleted:       {},
	StatusFailed:          {},
}

// Valid returns true if the status is a known pipeline state
func (s EpisodeStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are possible
func (s EpisodeStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether next is a legal successor of s
func (s EpisodeStatus) CanTransitionTo(next EpisodeStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ToneStyle represents the scripted tone of an episode. It only affects
// script generation, never orchestration.
type ToneStyle string

const (
	ToneConversational ToneStyle = "conversational"
	ToneProfessional   ToneStyle = "professional"
	ToneHumorous       ToneStyle = "humorous"
	ToneDramatic       ToneStyle = "dramatic"
	ToneEducational    ToneStyle = "educational"
	ToneCasual         ToneStyle = "casual"
)

// Valid returns true if the tone is one of the supported styles
func (t ToneStyle) Valid() bool {
	switch t {
	case ToneConversational, ToneProfessional, ToneHumorous, ToneDramatic, ToneEducational, ToneCasual:
		return true
	}
	return false
}

// Speaker roles for the two fixed hosts
const (
	SpeakerHostA = "host_a"
	SpeakerHostB = "host_b"
)

// DialogueLine is one scripted utterance. CitationQuery is present only when
// the script generator judged the line references a specific verifiable source.
type DialogueLine struct {
	Speaker       string `json:"speaker"`
	Text          string `json:"text"`
	CitationQuery string `json:"citation_query,omitempty"`
}

// Script is an ordered list of dialogue lines stored as a JSON column
type Script []DialogueLine

// Value implements driver.Valuer for Script
func (s Script) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for Script
func (s *Script) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, s)
}

// Citation is resolved source metadata anchored to a moment in the stitched audio
type Citation struct {
	TimestampSeconds float64  `json:"timestamp_seconds"`
	Speaker          string   `json:"speaker"`
	TextSnippet      string   `json:"text_snippet"`
	Query            string   `json:"query"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	PublishedDate    string   `json:"published_date,omitempty"`
	ThumbnailURL     string   `json:"thumbnail_url,omitempty"`
	SourceURL        string   `json:"source_url,omitempty"`
	SourceName       string   `json:"source_name"`
}

// CitationList is a JSON column of citations. A nil list stores SQL NULL
// ("no line requested a citation"); an empty list stores "[]" ("requested
// but none resolved"). The two are deliberately distinguishable.
type CitationList []Citation

// Value implements driver.Valuer for CitationList
func (c CitationList) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for CitationList
func (c *CitationList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, c)
}

// Episode is the unit of work and the persisted aggregate. The pipeline
// orchestrator is the sole writer of Status and the stage output fields.
type Episode struct {
	gorm.Model
	UUID     string        `json:"uuid" gorm:"uniqueIndex;not null;size:36"`
	Topic    string        `json:"topic" gorm:"not null;size:200"`
	Tone     ToneStyle     `json:"tone" gorm:"not null;size:20;default:conversational"`
	Category string        `json:"category" gorm:"size:20;default:other;index"`
	Status   EpisodeStatus `json:"status" gorm:"not null;size:20;default:pending;index"`

	// Stage outputs, each written at most once as the pipeline advances
	ResearchNotes   *string      `json:"research_notes,omitempty"`
	CoverImageURL   *string      `json:"cover_image_url,omitempty" gorm:"size:500"`
	Script          Script       `json:"script,omitempty" gorm:"type:json"`
	Citations       CitationList `json:"citations,omitempty" gorm:"type:json"`
	AudioFilename   *string      `json:"audio_filename,omitempty" gorm:"size:255"`
	AudioURL        *string      `json:"audio_url,omitempty" gorm:"size:500"`
	DurationSeconds *float64     `json:"duration_seconds,omitempty"`
	Error           *string      `json:"error,omitempty" gorm:"size:2000"`
}

// BeforeCreate generates a UUID before creating a new episode
func (e *Episode) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if e.Tone == "" {
		e.Tone = ToneConversational
	}
	return nil
}

// TableName returns the table name for the Episode model
func (Episode) TableName() string {
	return "episodes"
}

// IsCompleted returns true if generation finished successfully
func (e *Episode) IsCompleted() bool {
	return e.Status == StatusCompleted
}

// IsFailed returns true if generation terminated with an error
func (e *Episode) IsFailed() bool {
	return e.Status == StatusFailed
}
