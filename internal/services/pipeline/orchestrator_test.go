package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/azh05/Recapsule/internal/models"
	"github.com/azh05/Recapsule/internal/services/episodes"
	"github.com/azh05/Recapsule/internal/services/research"
	"github.com/azh05/Recapsule/internal/services/stitcher"
)

// recordingRepo wraps the real repository and records every persisted status
type recordingRepo struct {
	episodes.EpisodeRepository
	statuses []models.EpisodeStatus
}

func (r *recordingRepo) UpdateEpisodeFields(ctx context.Context, uuid string, fields map[string]interface{}) error {
	if status, ok := fields["status"]; ok {
		r.statuses = append(r.statuses, status.(models.EpisodeStatus))
	}
	return r.EpisodeRepository.UpdateEpisodeFields(ctx, uuid, fields)
}

type fakeResearcher struct {
	notes       string
	researchErr error
	script      models.Script
	scriptErr   error
}

func (f *fakeResearcher) Research(_ context.Context, _ string) (string, error) {
	return f.notes, f.researchErr
}

func (f *fakeResearcher) GenerateScript(_ context.Context, _, _ string, _ models.ToneStyle) (models.Script, error) {
	return f.script, f.scriptErr
}

type fakeImages struct {
	url string
	ok  bool
}

func (f *fakeImages) FetchCoverImage(_ context.Context, _ string) (string, bool) {
	return f.url, f.ok
}

type fakeVoice struct {
	failAt int // 1-based line number to fail on, 0 never
	calls  int
}

func (f *fakeVoice) Synthesize(_ context.Context, speaker, text string) ([]byte, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("voice API unavailable")
	}
	return []byte(fmt.Sprintf("%s:%s", speaker, text)), nil
}

type fakeStitcher struct {
	err error
}

func (f *fakeStitcher) Build(_ context.Context, segments []stitcher.AudioSegment) (*stitcher.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	timeline := make([]stitcher.TimelineEntry, len(segments))
	for i := range segments {
		timeline[i] = stitcher.TimelineEntry{LineIndex: i, StartSeconds: float64(i) * 2.5}
	}
	return &stitcher.Result{
		Audio:           []byte("stitched"),
		DurationSeconds: float64(len(segments)) * 2.5,
		Timeline:        timeline,
	}, nil
}

type fakeStore struct {
	saved map[string][]byte
	err   error
}

func (f *fakeStore) SaveAudio(_ context.Context, filename string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return "http://localhost:8080/audio/" + filename, nil
}

type fakeResolver struct {
	citations models.CitationList
}

func (f *fakeResolver) Resolve(_ context.Context, _ models.Script, _ []stitcher.TimelineEntry) models.CitationList {
	return f.citations
}

type fixture struct {
	orchestrator *Orchestrator
	repo         *recordingRepo
	episode      *models.Episode
	voice        *fakeVoice
	store        *fakeStore
}

func defaultScript() models.Script {
	return models.Script{
		{Speaker: models.SpeakerHostA, Text: "Welcome back to the show!"},
		{Speaker: models.SpeakerHostB, Text: "What's today's story?"},
		{Speaker: models.SpeakerHostA, Text: "In his diary, Columbus wrote...", CitationQuery: "Columbus diary"},
	}
}

func setup(t *testing.T, mutate func(*fixture)) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Episode{}))

	repo := &recordingRepo{EpisodeRepository: episodes.NewRepository(db)}

	episode := &models.Episode{Topic: "The voyages of Columbus", Tone: models.ToneDramatic}
	require.NoError(t, repo.CreateEpisode(context.Background(), episode))

	f := &fixture{
		repo:    repo,
		episode: episode,
		voice:   &fakeVoice{},
		store:   &fakeStore{},
	}
	researcher := &fakeResearcher{notes: "## Key facts\n- 1492 voyage", script: defaultScript()}
	images := &fakeImages{url: "https://upload.wikimedia.org/columbus.jpg", ok: true}
	resolver := &fakeResolver{citations: models.CitationList{{Query: "Columbus diary", Title: "The Diario"}}}

	f.orchestrator = NewOrchestrator(repo, researcher, images, f.voice, &fakeStitcher{}, f.store, resolver)

	if mutate != nil {
		mutate(f)
	}
	return f
}

func (f *fixture) reload(t *testing.T) *models.Episode {
	t.Helper()
	episode, err := f.repo.GetEpisodeByUUID(context.Background(), f.episode.UUID)
	require.NoError(t, err)
	return episode
}

func TestRunCompletesEpisode(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.orchestrator.Run(context.Background(), f.episode.UUID))

	got := f.reload(t)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.ResearchNotes)
	assert.Contains(t, *got.ResearchNotes, "1492")
	require.NotNil(t, got.CoverImageURL)
	require.Len(t, got.Script, 3)
	require.NotNil(t, got.AudioFilename)
	assert.Equal(t, got.UUID+".mp3", *got.AudioFilename)
	require.NotNil(t, got.AudioURL)
	assert.Equal(t, "http://localhost:8080/audio/"+got.UUID+".mp3", *got.AudioURL)
	require.NotNil(t, got.DurationSeconds)
	assert.InDelta(t, 7.5, *got.DurationSeconds, 0.001)
	require.Len(t, got.Citations, 1)
	assert.Nil(t, got.Error)

	// One synthesis call per line, audio actually stored
	assert.Equal(t, 3, f.voice.calls)
	assert.Equal(t, []byte("stitched"), f.store.saved[got.UUID+".mp3"])

	assert.Equal(t, []models.EpisodeStatus{
		models.StatusResearching,
		models.StatusScriptwriting,
		models.StatusGeneratingAudio,
		models.StatusStitching,
		models.StatusCompleted,
	}, f.repo.statuses)
}

func TestRunCoverImageMissIsNotFatal(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.orchestrator.images = &fakeImages{ok: false}
	})

	require.NoError(t, f.orchestrator.Run(context.Background(), f.episode.UUID))

	got := f.reload(t)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Nil(t, got.CoverImageURL)
}

func TestRunResearchFailure(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.orchestrator.researcher = &fakeResearcher{researchErr: errors.New("upstream 500")}
	})

	err := f.orchestrator.Run(context.Background(), f.episode.UUID)
	require.Error(t, err)

	var stageErr *models.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageResearch, stageErr.Stage)

	got := f.reload(t)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "upstream 500")
	assert.Nil(t, got.ResearchNotes)
	assert.Nil(t, got.AudioURL)
}

func TestRunMalformedScriptClassifiedAsValidation(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.orchestrator.researcher = &fakeResearcher{
			notes:     "notes",
			scriptErr: fmt.Errorf("%w: empty dialogue", research.ErrMalformedScript),
		}
	})

	err := f.orchestrator.Run(context.Background(), f.episode.UUID)
	require.Error(t, err)

	var stageErr *models.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageValidation, stageErr.Stage)

	got := f.reload(t)
	assert.Equal(t, models.StatusFailed, got.Status)
	// Research output from the stage that did succeed is preserved
	require.NotNil(t, got.ResearchNotes)
	assert.Nil(t, got.Script)
}

func TestRunSynthesisFailureStopsPipeline(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.voice.failAt = 2
	})

	err := f.orchestrator.Run(context.Background(), f.episode.UUID)
	require.Error(t, err)

	var stageErr *models.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageSynthesis, stageErr.Stage)

	got := f.reload(t)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "line 2 of 3")
	// The script stage completed, so its output stays persisted while the
	// audio fields never get written
	assert.NotNil(t, got.Script)
	assert.Nil(t, got.AudioFilename)
	assert.Nil(t, got.AudioURL)
	assert.Nil(t, got.DurationSeconds)
	// No stitch or upload happened
	assert.Empty(t, f.store.saved)
}

func TestRunStitchFailure(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.orchestrator.stitcher = &fakeStitcher{err: errors.New("concat failed")}
	})

	err := f.orchestrator.Run(context.Background(), f.episode.UUID)
	require.Error(t, err)

	var stageErr *models.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageStitching, stageErr.Stage)

	got := f.reload(t)
	assert.Equal(t, models.StatusFailed, got.Status)
}

func TestRunUploadFailure(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.store.err = errors.New("disk full")
	})

	err := f.orchestrator.Run(context.Background(), f.episode.UUID)
	require.Error(t, err)

	var stageErr *models.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageStitching, stageErr.Stage)

	got := f.reload(t)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Nil(t, got.AudioURL)
}

func TestRunCitationOutcomes(t *testing.T) {
	t.Run("nil when no line requested one", func(t *testing.T) {
		f := setup(t, func(f *fixture) {
			f.orchestrator.citations = &fakeResolver{citations: nil}
		})

		require.NoError(t, f.orchestrator.Run(context.Background(), f.episode.UUID))
		assert.Nil(t, f.reload(t).Citations)
	})

	t.Run("empty list when lookups all missed", func(t *testing.T) {
		f := setup(t, func(f *fixture) {
			f.orchestrator.citations = &fakeResolver{citations: models.CitationList{}}
		})

		require.NoError(t, f.orchestrator.Run(context.Background(), f.episode.UUID))
		got := f.reload(t)
		require.NotNil(t, got.Citations)
		assert.Empty(t, got.Citations)
		assert.Equal(t, models.StatusCompleted, got.Status)
	})
}

func TestRunSkipsTerminalEpisode(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.repo.UpdateEpisodeFields(context.Background(), f.episode.UUID, map[string]interface{}{
		"status": models.StatusFailed,
	}))
	f.repo.statuses = nil

	require.NoError(t, f.orchestrator.Run(context.Background(), f.episode.UUID))

	assert.Empty(t, f.repo.statuses)
	assert.Equal(t, 0, f.voice.calls)
}

func TestRunUnknownEpisode(t *testing.T) {
	f := setup(t, nil)

	err := f.orchestrator.Run(context.Background(), "no-such-uuid")
	require.Error(t, err)

	var stageErr *models.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StageSystem, stageErr.Stage)
}

// Every run's persisted status sequence must be a prefix of the canonical
// forward order, optionally ending in failed.
func TestRunStatusSequencesAreOrdered(t *testing.T) {
	canonical := []models.EpisodeStatus{
		models.StatusResearching,
		models.StatusScriptwriting,
		models.StatusGeneratingAudio,
		models.StatusStitching,
		models.StatusCompleted,
	}

	scenarios := map[string]func(*fixture){
		"success":         nil,
		"research fails":  func(f *fixture) { f.orchestrator.researcher = &fakeResearcher{researchErr: errors.New("x")} },
		"script fails":    func(f *fixture) { f.orchestrator.researcher = &fakeResearcher{notes: "n", scriptErr: errors.New("x")} },
		"synthesis fails": func(f *fixture) { f.voice.failAt = 1 },
		"stitch fails":    func(f *fixture) { f.orchestrator.stitcher = &fakeStitcher{err: errors.New("x")} },
		"upload fails":    func(f *fixture) { f.store.err = errors.New("x") },
	}

	for name, mutate := range scenarios {
		t.Run(name, func(t *testing.T) {
			f := setup(t, mutate)
			_ = f.orchestrator.Run(context.Background(), f.episode.UUID)

			statuses := f.repo.statuses
			require.NotEmpty(t, statuses)

			forward := statuses
			if statuses[len(statuses)-1] == models.StatusFailed {
				forward = statuses[:len(statuses)-1]
			}
			require.LessOrEqual(t, len(forward), len(canonical))
			for i, status := range forward {
				assert.Equal(t, canonical[i], status)
			}
		})
	}
}
