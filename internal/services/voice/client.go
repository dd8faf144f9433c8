package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/azh05/Recapsule/internal/models"
)

// Client handles communication with the ElevenLabs text-to-speech API
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	modelID      string
	outputFormat string
	voices       map[string]string
}

// Config holds configuration for the ElevenLabs client
type Config struct {
	APIKey       string
	BaseURL      string
	ModelID      string
	OutputFormat string
	VoiceHostA   string
	VoiceHostB   string
	Timeout      time.Duration
}

// NewClient creates a new ElevenLabs text-to-speech client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if cfg.VoiceHostA == "" {
		cfg.VoiceHostA = "JBFqnCBsd6RMkjVDRZzb"
	}
	if cfg.VoiceHostB == "" {
		cfg.VoiceHostB = "9BWtsMINqrJLrRacOk9x"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		modelID:      cfg.ModelID,
		outputFormat: cfg.OutputFormat,
		voices: map[string]string{
			models.SpeakerHostA: cfg.VoiceHostA,
			models.SpeakerHostB: cfg.VoiceHostB,
		},
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize renders one line of dialogue in the given speaker's voice and
// returns the encoded audio bytes. Unknown speakers fall back to host A's voice.
func (c *Client) Synthesize(ctx context.Context, speaker, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voiceID, ok := c.voices[speaker]
	if !ok {
		voiceID = c.voices[models.SpeakerHostA]
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	fullURL := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, c.outputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("API returned empty audio")
	}

	return audio, nil
}
