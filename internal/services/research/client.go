package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/azh05/Recapsule/internal/models"
)

// ErrMalformedScript marks a script response that was received but failed
// structural validation. It is distinct from transport failures so callers
// can tell a bad model answer apart from an unreachable API.
var ErrMalformedScript = errors.New("model returned malformed script")

// Client handles communication with the Gemini generateContent API
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	researchModel string
	scriptModel   string
	utilityModel  string
}

// Config holds configuration for the Gemini client
type Config struct {
	APIKey        string
	BaseURL       string
	ResearchModel string
	ScriptModel   string
	UtilityModel  string
	Timeout       time.Duration
}

// NewClient creates a new Gemini API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.ResearchModel == "" {
		cfg.ResearchModel = "gemini-3-pro-preview"
	}
	if cfg.ScriptModel == "" {
		cfg.ScriptModel = "gemini-3-pro-preview"
	}
	if cfg.UtilityModel == "" {
		cfg.UtilityModel = "gemini-2.0-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Minute
	}

	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		researchModel: cfg.ResearchModel,
		scriptModel:   cfg.ScriptModel,
		utilityModel:  cfg.UtilityModel,
	}
}

type generateRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate posts a single generateContent request and returns the concatenated
// text of the first candidate.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	fullURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			log.Printf("[ERROR] Gemini API returned status %d for model %s: %s", resp.StatusCode, model, result.Error.Message)
			return "", fmt.Errorf("API error %d: %s", result.Error.Code, result.Error.Message)
		}
		log.Printf("[ERROR] Gemini API returned status %d for model %s", resp.StatusCode, model)
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("API returned empty candidate text")
	}
	return sb.String(), nil
}

// Research gathers grounded research notes for a topic. Search grounding is
// requested so the notes draw on current sources rather than model memory.
func (c *Client) Research(ctx context.Context, topic string) (string, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: researchSystemPrompt}}},
		Contents: []content{
			{Parts: []part{{Text: fmt.Sprintf("Research this topic for a podcast episode: %s", topic)}}},
		},
		Tools:            []tool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: &generationConfig{Temperature: 0.3},
	}

	notes, err := c.generate(ctx, c.researchModel, req)
	if err != nil {
		return "", fmt.Errorf("researching topic: %w", err)
	}
	return notes, nil
}

// GenerateScript turns research notes into a two-host dialogue. The model
// answers with a JSON array; anything that decodes but fails structural
// validation is reported as ErrMalformedScript.
func (c *Client) GenerateScript(ctx context.Context, topic, researchNotes string, tone models.ToneStyle) (models.Script, error) {
	guidance, ok := toneGuidance[tone]
	if !ok {
		guidance = toneGuidance[models.ToneConversational]
	}
	systemPrompt := fmt.Sprintf("%s\n\nTONE GUIDANCE: %s", scriptSystemPromptBase, guidance)

	prompt := fmt.Sprintf(
		"Topic: %s\n\nResearch notes:\n%s\n\n"+
			"IMPORTANT: Base your script ENTIRELY on the research notes above. "+
			"Use the facts, anecdotes, and details from the research to create an "+
			"accurate, engaging dialogue. Now write the podcast script as a JSON array.",
		topic, researchNotes,
	)

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig:  &generationConfig{Temperature: 0.7, ResponseMimeType: "application/json"},
	}

	raw, err := c.generate(ctx, c.scriptModel, req)
	if err != nil {
		return nil, fmt.Errorf("generating script: %w", err)
	}

	return ParseScript(raw)
}

// ParseScript decodes and validates a model-produced script payload
func ParseScript(raw string) (models.Script, error) {
	var script models.Script
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScript, err)
	}

	if len(script) == 0 {
		return nil, fmt.Errorf("%w: empty dialogue", ErrMalformedScript)
	}

	for i, line := range script {
		if line.Speaker != models.SpeakerHostA && line.Speaker != models.SpeakerHostB {
			return nil, fmt.Errorf("%w: line %d has unknown speaker %q", ErrMalformedScript, i, line.Speaker)
		}
		if strings.TrimSpace(line.Text) == "" {
			return nil, fmt.Errorf("%w: line %d has empty text", ErrMalformedScript, i)
		}
	}

	return script, nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// JSON in despite the response mime type.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Categorize classifies a topic into one of the predefined categories.
// It never fails: any transport or parse problem falls back to "other".
func (c *Client) Categorize(ctx context.Context, topic string) string {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: categorizeSystemPrompt}}},
		Contents:          []content{{Parts: []part{{Text: fmt.Sprintf("Classify this podcast topic: %s", topic)}}}},
		GenerationConfig:  &generationConfig{Temperature: 0.0, ResponseMimeType: "application/json"},
	}

	raw, err := c.generate(ctx, c.utilityModel, req)
	if err != nil {
		log.Printf("[WARN] Categorizing topic %q failed: %v", topic, err)
		return "other"
	}

	var result struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		log.Printf("[WARN] Categorizing topic %q returned undecodable body: %v", topic, err)
		return "other"
	}

	category := strings.ToLower(strings.TrimSpace(result.Category))
	if !allowedCategories[category] {
		return "other"
	}
	return category
}
