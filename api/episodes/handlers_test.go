package episodes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azh05/Recapsule/api/types"
	"github.com/azh05/Recapsule/internal/models"
	episodesService "github.com/azh05/Recapsule/internal/services/episodes"
)

type fakeEpisodeService struct {
	episodes map[string]*models.Episode
	listErr  error
}

func newFakeEpisodeService() *fakeEpisodeService {
	return &fakeEpisodeService{episodes: map[string]*models.Episode{}}
}

func (f *fakeEpisodeService) CreateEpisode(_ context.Context, topic string, tone models.ToneStyle) (*models.Episode, error) {
	if len(topic) < episodesService.TopicMinLength {
		return nil, episodesService.NewValidationError("topic", "too short")
	}
	if tone != "" && !tone.Valid() {
		return nil, episodesService.NewValidationError("tone", "unknown tone")
	}
	if tone == "" {
		tone = models.ToneConversational
	}
	episode := &models.Episode{UUID: "uuid-" + topic, Topic: topic, Tone: tone, Status: models.StatusPending}
	f.episodes[episode.UUID] = episode
	return episode, nil
}

func (f *fakeEpisodeService) GetEpisodeByUUID(_ context.Context, uuid string) (*models.Episode, error) {
	episode, ok := f.episodes[uuid]
	if !ok {
		return nil, episodesService.NewNotFoundError("episode", uuid)
	}
	return episode, nil
}

func (f *fakeEpisodeService) ListEpisodes(_ context.Context, params episodesService.ListParams) ([]models.Episode, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []models.Episode
	for _, e := range f.episodes {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEpisodeService) ListCompletedEpisodes(_ context.Context, limit int) ([]models.Episode, error) {
	var out []models.Episode
	for _, e := range f.episodes {
		if e.Status == models.StatusCompleted {
			out = append(out, *e)
		}
	}
	return out, nil
}

func setupRouter(service episodesService.EpisodeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	deps := &types.Dependencies{EpisodeService: service}
	RegisterRoutes(engine.Group("/api/v1/episodes"), deps)
	return engine
}

func TestPostCreate(t *testing.T) {
	t.Run("creates episode", func(t *testing.T) {
		engine := setupRouter(newFakeEpisodeService())

		body, _ := json.Marshal(types.CreateEpisodeRequest{Topic: "The Apollo program", Tone: "dramatic"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/episodes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp types.EpisodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "The Apollo program", resp.Topic)
		assert.Equal(t, models.ToneDramatic, resp.Tone)
		assert.Equal(t, models.StatusPending, resp.Status)
		assert.NotEmpty(t, resp.UUID)
	})

	t.Run("missing topic", func(t *testing.T) {
		engine := setupRouter(newFakeEpisodeService())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/episodes", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure surfaces as 400", func(t *testing.T) {
		engine := setupRouter(newFakeEpisodeService())

		body, _ := json.Marshal(types.CreateEpisodeRequest{Topic: "ok topic", Tone: "sarcastic"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/episodes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp types.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "tone")
	})
}

func TestGetByID(t *testing.T) {
	service := newFakeEpisodeService()
	episode, err := service.CreateEpisode(context.Background(), "The Library of Alexandria", models.ToneEducational)
	require.NoError(t, err)

	engine := setupRouter(service)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes/"+url.PathEscape(episode.UUID), nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp types.EpisodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, episode.UUID, resp.UUID)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes/unknown-uuid", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetAll(t *testing.T) {
	service := newFakeEpisodeService()
	_, err := service.CreateEpisode(context.Background(), "Topic one", "")
	require.NoError(t, err)
	_, err = service.CreateEpisode(context.Background(), "Topic two", "")
	require.NoError(t, err)

	engine := setupRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes?limit=10", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.EpisodeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Episodes, 2)
	assert.Equal(t, 10, resp.Limit)
}
