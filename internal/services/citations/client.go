package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Source is resolved metadata for one looked-up citation query
type Source struct {
	Title         string
	Authors       []string
	PublishedDate string
	ThumbnailURL  string
	SourceURL     string
	SourceName    string
}

// Lookup is the citation lookup capability. Implementations report absence
// instead of raising: a failed or empty lookup returns (nil, false) and must
// never surface an error into the pipeline.
type Lookup interface {
	Lookup(ctx context.Context, query string) (*Source, bool)
}

// Client resolves citation queries against the Google Books volumes API
type Client struct {
	httpClient *http.Client
	baseURL    string
	sourceName string
}

// Config holds configuration for the citation lookup client
type Config struct {
	BaseURL    string
	SourceName string
	Timeout    time.Duration
}

// NewClient creates a new citation lookup client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com/books/v1"
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "Google Books"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		sourceName: cfg.SourceName,
	}
}

// volumesResponse is the subset of the volumes API response we read
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
			CanonicalURL  string   `json:"canonicalVolumeLink"`
			InfoLink      string   `json:"infoLink"`
			ImageLinks    struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup resolves a query to source metadata, or reports absence. Transport
// failures, non-200 statuses, and empty result sets all degrade to a miss.
func (c *Client) Lookup(ctx context.Context, query string) (*Source, bool) {
	if query == "" {
		return nil, false
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "1")
	fullURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		log.Printf("[WARN] Citation lookup request for %q failed: %v", query, err)
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[WARN] Citation lookup for %q failed: %v", query, err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] Citation lookup for %q returned status %d", query, resp.StatusCode)
		return nil, false
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[WARN] Citation lookup for %q returned undecodable body: %v", query, err)
		return nil, false
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, false
	}

	info := result.Items[0].VolumeInfo
	if info.Title == "" {
		return nil, false
	}

	sourceURL := info.CanonicalURL
	if sourceURL == "" {
		sourceURL = info.InfoLink
	}

	return &Source{
		Title:         info.Title,
		Authors:       info.Authors,
		PublishedDate: info.PublishedDate,
		ThumbnailURL:  info.ImageLinks.Thumbnail,
		SourceURL:     sourceURL,
		SourceName:    c.sourceName,
	}, true
}
