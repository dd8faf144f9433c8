package types

// CreateEpisodeRequest is the body of POST /api/v1/episodes
type CreateEpisodeRequest struct {
	Topic string `json:"topic" binding:"required"`
	Tone  string `json:"tone"`
}
