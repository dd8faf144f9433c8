package types

import (
	"time"

	"github.com/azh05/Recapsule/internal/models"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// EpisodeResponse is the full episode DTO returned for single-episode reads.
// Stage output fields are omitted until the pipeline has produced them.
type EpisodeResponse struct {
	UUID          string               `json:"uuid"`
	Topic         string               `json:"topic"`
	Tone          models.ToneStyle     `json:"tone"`
	Category      string               `json:"category"`
	Status        models.EpisodeStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	ResearchNotes *string              `json:"research_notes,omitempty"`
	CoverImageURL *string              `json:"cover_image_url,omitempty"`
	Script        models.Script        `json:"script,omitempty"`
	// Pointer so an empty resolved list still renders as []: "requested but
	// none resolved" stays distinguishable from "never requested" (omitted)
	Citations       *models.CitationList `json:"citations,omitempty"`
	AudioFilename   *string              `json:"audio_filename,omitempty"`
	AudioURL        *string              `json:"audio_url,omitempty"`
	DurationSeconds *float64             `json:"duration_seconds,omitempty"`
	Error           *string              `json:"error,omitempty"`
}

// EpisodeSummary is the trimmed DTO used in listings. Heavy fields (research
// notes, script, citations) are omitted.
type EpisodeSummary struct {
	UUID            string               `json:"uuid"`
	Topic           string               `json:"topic"`
	Tone            models.ToneStyle     `json:"tone"`
	Category        string               `json:"category"`
	Status          models.EpisodeStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	CoverImageURL   *string              `json:"cover_image_url,omitempty"`
	AudioURL        *string              `json:"audio_url,omitempty"`
	DurationSeconds *float64             `json:"duration_seconds,omitempty"`
}

// EpisodeListResponse is the paged listing body
type EpisodeListResponse struct {
	Episodes []EpisodeSummary `json:"episodes"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// NewEpisodeResponse maps a persisted episode to its full DTO
func NewEpisodeResponse(e *models.Episode) EpisodeResponse {
	var citations *models.CitationList
	if e.Citations != nil {
		citations = &e.Citations
	}
	return EpisodeResponse{
		UUID:            e.UUID,
		Topic:           e.Topic,
		Tone:            e.Tone,
		Category:        e.Category,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		ResearchNotes:   e.ResearchNotes,
		CoverImageURL:   e.CoverImageURL,
		Script:          e.Script,
		Citations:       citations,
		AudioFilename:   e.AudioFilename,
		AudioURL:        e.AudioURL,
		DurationSeconds: e.DurationSeconds,
		Error:           e.Error,
	}
}

// NewEpisodeSummary maps a persisted episode to its listing DTO
func NewEpisodeSummary(e *models.Episode) EpisodeSummary {
	return EpisodeSummary{
		UUID:            e.UUID,
		Topic:           e.Topic,
		Tone:            e.Tone,
		Category:        e.Category,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		CoverImageURL:   e.CoverImageURL,
		AudioURL:        e.AudioURL,
		DurationSeconds: e.DurationSeconds,
	}
}

// NewEpisodeListResponse maps a page of episodes to the listing body
func NewEpisodeListResponse(episodes []models.Episode, total int64, limit, offset int) EpisodeListResponse {
	summaries := make([]EpisodeSummary, len(episodes))
	for i := range episodes {
		summaries[i] = NewEpisodeSummary(&episodes[i])
	}
	return EpisodeListResponse{
		Episodes: summaries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
}
