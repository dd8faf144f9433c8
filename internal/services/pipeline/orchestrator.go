// Package pipeline runs the episode generation state machine: research,
// scriptwriting, per-line synthesis, stitching, citation reconciliation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/azh05/Recapsule/internal/models"
	"github.com/azh05/Recapsule/internal/services/episodes"
	"github.com/azh05/Recapsule/internal/services/research"
	"github.com/azh05/Recapsule/internal/services/stitcher"
	"github.com/azh05/Recapsule/internal/services/storage"
)

// ResearchProvider produces research notes and turns them into a script
type ResearchProvider interface {
	Research(ctx context.Context, topic string) (string, error)
	GenerateScript(ctx context.Context, topic, researchNotes string, tone models.ToneStyle) (models.Script, error)
}

// ImageProvider finds cover art for a topic, best effort
type ImageProvider interface {
	FetchCoverImage(ctx context.Context, topic string) (string, bool)
}

// Synthesizer renders one line of dialogue to audio
type Synthesizer interface {
	Synthesize(ctx context.Context, speaker, text string) ([]byte, error)
}

// Stitcher assembles per-line segments into one track with a timeline
type Stitcher interface {
	Build(ctx context.Context, segments []stitcher.AudioSegment) (*stitcher.Result, error)
}

// CitationResolver reconciles script citation queries against the timeline
type CitationResolver interface {
	Resolve(ctx context.Context, script models.Script, timeline []stitcher.TimelineEntry) models.CitationList
}

// Orchestrator drives one episode through the generation pipeline. It is the
// sole writer of episode status and stage output fields; each status is
// persisted before the stage's external work begins, so a poller always sees
// the stage currently running.
type Orchestrator struct {
	repository episodes.EpisodeRepository
	researcher ResearchProvider
	images     ImageProvider
	voice      Synthesizer
	stitcher   Stitcher
	store      storage.Store
	citations  CitationResolver
}

// NewOrchestrator creates a pipeline orchestrator
func NewOrchestrator(
	repository episodes.EpisodeRepository,
	researcher ResearchProvider,
	images ImageProvider,
	voice Synthesizer,
	st Stitcher,
	store storage.Store,
	citations CitationResolver,
) *Orchestrator {
	return &Orchestrator{
		repository: repository,
		researcher: researcher,
		images:     images,
		voice:      voice,
		stitcher:   st,
		store:      store,
		citations:  citations,
	}
}

// Run generates the episode identified by UUID. It returns nil on success
// and a stage-classified error on failure; in both cases the outcome has
// been persisted on the episode row before returning.
func (o *Orchestrator) Run(ctx context.Context, episodeUUID string) error {
	episode, err := o.repository.GetEpisodeByUUID(ctx, episodeUUID)
	if err != nil {
		return models.NewStageError(models.StageSystem, fmt.Sprintf("loading episode %s", episodeUUID), err)
	}

	if episode.Status.IsTerminal() {
		log.Printf("[WARN] Episode %s is already %s, skipping generation", episodeUUID, episode.Status)
		return nil
	}

	// Stage 1: research, with cover art fetched concurrently
	if err := o.setStatus(ctx, episode, models.StatusResearching, nil); err != nil {
		return o.fail(ctx, episode, models.StageSystem, err)
	}

	var (
		wg       sync.WaitGroup
		coverURL string
		coverOK  bool
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		coverURL, coverOK = o.images.FetchCoverImage(ctx, episode.Topic)
	}()

	notes, researchErr := o.researcher.Research(ctx, episode.Topic)
	wg.Wait()

	if researchErr != nil {
		return o.fail(ctx, episode, models.StageResearch, researchErr)
	}

	stageFields := map[string]interface{}{"research_notes": notes}
	if coverOK {
		stageFields["cover_image_url"] = coverURL
	}

	// Stage 2: script generation
	if err := o.setStatus(ctx, episode, models.StatusScriptwriting, stageFields); err != nil {
		return o.fail(ctx, episode, models.StageSystem, err)
	}

	script, err := o.researcher.GenerateScript(ctx, episode.Topic, notes, episode.Tone)
	if err != nil {
		stage := models.StageScript
		if errors.Is(err, research.ErrMalformedScript) {
			stage = models.StageValidation
		}
		return o.fail(ctx, episode, stage, err)
	}

	// Stage 3: per-line synthesis, strictly in script order
	if err := o.setStatus(ctx, episode, models.StatusGeneratingAudio, map[string]interface{}{
		"script": script,
	}); err != nil {
		return o.fail(ctx, episode, models.StageSystem, err)
	}

	segments := make([]stitcher.AudioSegment, 0, len(script))
	for i, line := range script {
		audio, err := o.voice.Synthesize(ctx, line.Speaker, line.Text)
		if err != nil {
			return o.fail(ctx, episode, models.StageSynthesis,
				fmt.Errorf("synthesizing line %d of %d: %w", i+1, len(script), err))
		}
		segments = append(segments, stitcher.AudioSegment{Speaker: line.Speaker, Audio: audio})
	}

	// Stage 4: stitch and upload
	if err := o.setStatus(ctx, episode, models.StatusStitching, nil); err != nil {
		return o.fail(ctx, episode, models.StageSystem, err)
	}

	result, err := o.stitcher.Build(ctx, segments)
	if err != nil {
		return o.fail(ctx, episode, models.StageStitching, err)
	}

	filename := fmt.Sprintf("%s.mp3", episode.UUID)
	audioURL, err := o.store.SaveAudio(ctx, filename, result.Audio)
	if err != nil {
		return o.fail(ctx, episode, models.StageStitching, fmt.Errorf("saving audio: %w", err))
	}

	// Stage 5: citation reconciliation, never fatal
	citationList := o.citations.Resolve(ctx, script, result.Timeline)

	// Stage 6: completion, all listener-facing fields in one write
	if err := o.setStatus(ctx, episode, models.StatusCompleted, map[string]interface{}{
		"audio_filename":   filename,
		"audio_url":        audioURL,
		"duration_seconds": result.DurationSeconds,
		"citations":        citationList,
	}); err != nil {
		return o.fail(ctx, episode, models.StageSystem, err)
	}

	log.Printf("[INFO] Episode %s completed: %d lines, %.1fs, %d citations",
		episode.UUID, len(script), result.DurationSeconds, len(citationList))
	return nil
}

// setStatus validates the transition against the episode state machine,
// persists it along with any stage output fields, and updates the in-memory
// episode on success.
func (o *Orchestrator) setStatus(ctx context.Context, episode *models.Episode, next models.EpisodeStatus, fields map[string]interface{}) error {
	if !episode.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal status transition %s -> %s for episode %s", episode.Status, next, episode.UUID)
	}

	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = next

	if err := o.repository.UpdateEpisodeFields(ctx, episode.UUID, fields); err != nil {
		return fmt.Errorf("persisting status %s: %w", next, err)
	}

	episode.Status = next
	return nil
}

// fail persists the failed status with a diagnostic and returns the error
// classified by stage. A failure while writing the failure is logged and
// swallowed; the episode then appears stuck in its last persisted status.
func (o *Orchestrator) fail(ctx context.Context, episode *models.Episode, stage models.StageKind, cause error) error {
	message := fmt.Sprintf("%s: %v", stage, cause)
	log.Printf("[ERROR] Episode %s failed in %s stage: %v", episode.UUID, stage, cause)

	if episode.Status.CanTransitionTo(models.StatusFailed) {
		if err := o.repository.UpdateEpisodeFields(ctx, episode.UUID, map[string]interface{}{
			"status": models.StatusFailed,
			"error":  message,
		}); err != nil {
			log.Printf("[ERROR] Could not persist failure for episode %s: %v", episode.UUID, err)
		} else {
			episode.Status = models.StatusFailed
		}
	}

	var stageErr *models.StageError
	if errors.As(cause, &stageErr) {
		return cause
	}
	return models.NewStageError(stage, message, cause)
}
