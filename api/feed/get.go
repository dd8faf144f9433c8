package feed

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/eduncan911/podcast"
	"github.com/gin-gonic/gin"

	"github.com/azh05/Recapsule/api/types"
	"github.com/azh05/Recapsule/internal/models"
)

const (
	defaultFeedLimit = 50
	feedCacheKey     = "feed.xml"
	feedCacheTTL     = time.Minute
)

// Get serves an RSS feed of completed episodes. The rendered document is
// cached briefly so frequent feed polls do not hit the database.
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.FeedCache != nil {
			if cached, ok := deps.FeedCache.Get(c.Request.Context(), feedCacheKey); ok {
				c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", cached)
				return
			}
		}

		episodes, err := deps.EpisodeService.ListCompletedEpisodes(c.Request.Context(), defaultFeedLimit)
		if err != nil {
			log.Printf("[ERROR] Failed to list episodes for feed: %v", err)
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("Failed to build feed"))
			return
		}

		rss, err := buildFeed(deps, episodes)
		if err != nil {
			log.Printf("[ERROR] Failed to build RSS feed: %v", err)
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("Failed to build feed"))
			return
		}

		if deps.FeedCache != nil {
			if err := deps.FeedCache.Set(c.Request.Context(), feedCacheKey, []byte(rss), feedCacheTTL); err != nil {
				log.Printf("[WARN] Failed to cache feed: %v", err)
			}
		}

		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
	}
}

func buildFeed(deps *types.Dependencies, episodes []models.Episode) (string, error) {
	cfg := deps.Config
	now := time.Now()

	p := podcast.New(cfg.Feed.Title, cfg.Feed.Link, cfg.Feed.Description, &now, &now)
	p.AddAuthor(cfg.Feed.Author, "")

	for i := range episodes {
		episode := &episodes[i]
		if episode.AudioURL == nil {
			continue
		}

		pubDate := episode.UpdatedAt
		item := podcast.Item{
			Title:       episode.Topic,
			Description: fmt.Sprintf("A generated two-host episode about: %s", episode.Topic),
			PubDate:     &pubDate,
		}
		item.AddEnclosure(*episode.AudioURL, podcast.MP3, audioSize(episode))
		if episode.CoverImageURL != nil {
			item.AddImage(*episode.CoverImageURL)
		}
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("adding episode %s to feed: %w", episode.UUID, err)
		}
	}

	return p.String(), nil
}

// audioSize estimates the enclosure byte length from the duration; the files
// are 128 kbit/s mono MP3s, so this is close enough for feed readers.
func audioSize(episode *models.Episode) int64 {
	if episode.DurationSeconds == nil {
		return 0
	}
	return int64(*episode.DurationSeconds * 16000)
}
