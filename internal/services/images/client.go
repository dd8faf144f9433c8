package images

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client looks up topic cover art through Wikipedia's pageimages API.
// The lookup is keyless and best effort; a miss never fails an episode.
type Client struct {
	httpClient *http.Client
	baseURL    string
	thumbSize  int
}

// Config holds configuration for the Wikipedia image client
type Config struct {
	BaseURL   string
	ThumbSize int
	Timeout   time.Duration
}

// NewClient creates a new Wikipedia cover image client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.ThumbSize == 0 {
		cfg.ThumbSize = 500
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		thumbSize:  cfg.ThumbSize,
	}
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Thumbnail struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchCoverImage searches Wikipedia for the topic and returns the first
// thumbnail URL found. All failures degrade to (value, false).
func (c *Client) FetchCoverImage(ctx context.Context, topic string) (string, bool) {
	if topic == "" {
		return "", false
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", topic)
	params.Set("gsrlimit", "3")
	params.Set("prop", "pageimages")
	params.Set("piprop", "thumbnail")
	params.Set("pithumbsize", strconv.Itoa(c.thumbSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[WARN] Cover image request for %q failed: %v", topic, err)
		return "", false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[WARN] Cover image lookup for %q failed: %v", topic, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] Cover image lookup for %q returned status %d", topic, resp.StatusCode)
		return "", false
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[WARN] Cover image lookup for %q returned undecodable body: %v", topic, err)
		return "", false
	}

	for _, page := range result.Query.Pages {
		if page.Thumbnail.Source != "" {
			return page.Thumbnail.Source, true
		}
	}

	return "", false
}
