package stitcher

import (
	"context"
	"fmt"
	"log"
)

// Silence gaps inserted between consecutive segments, in seconds. A speaker
// change reads naturally with a slightly longer pause.
const (
	GapSameSpeaker   = 0.4
	GapSpeakerChange = 0.6
)

// AudioSegment is the synthesized audio for one scripted line, pre-stitching
type AudioSegment struct {
	Speaker string
	Audio   []byte
}

// TimelineEntry maps a script line index to the start offset of its audio
// within the final stitched track. Gaps are attributed to no line: the
// recorded start is the segment's own audio start.
type TimelineEntry struct {
	LineIndex    int     `json:"index"`
	StartSeconds float64 `json:"start_seconds"`
}

// Result is the output of a successful build
type Result struct {
	Audio           []byte
	DurationSeconds float64
	Timeline        []TimelineEntry
}

// Codec is the external audio capability the builder drives: probing a
// segment's playable duration and rendering the concatenated track.
// pkg/ffmpeg provides the production implementation.
type Codec interface {
	Duration(ctx context.Context, data []byte) (float64, error)
	Stitch(ctx context.Context, segments [][]byte, gaps []float64) ([]byte, error)
}

// Builder concatenates ordered audio segments with speaker-aware silence
// gaps and records each segment's start offset. The timeline arithmetic is
// pure; all decoding and encoding goes through the Codec.
type Builder struct {
	codec Codec
}

// NewBuilder creates a timeline builder over the given codec
func NewBuilder(codec Codec) *Builder {
	return &Builder{codec: codec}
}

// Build stitches segments in order. Any segment whose audio cannot be
// probed fails the whole build; no partial output is produced.
func (b *Builder) Build(ctx context.Context, segments []AudioSegment) (*Result, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to build")
	}

	durations := make([]float64, len(segments))
	for i, segment := range segments {
		d, err := b.codec.Duration(ctx, segment.Audio)
		if err != nil {
			return nil, fmt.Errorf("probing segment %d: %w", i, err)
		}
		durations[i] = d
	}

	gaps := make([]float64, len(segments))
	timeline := make([]TimelineEntry, len(segments))
	cursor := 0.0

	for i, segment := range segments {
		if i > 0 {
			if segment.Speaker == segments[i-1].Speaker {
				gaps[i] = GapSameSpeaker
			} else {
				gaps[i] = GapSpeakerChange
			}
			cursor += gaps[i]
		}
		timeline[i] = TimelineEntry{LineIndex: i, StartSeconds: cursor}
		cursor += durations[i]
	}

	raw := make([][]byte, len(segments))
	for i, segment := range segments {
		raw[i] = segment.Audio
	}

	audio, err := b.codec.Stitch(ctx, raw, gaps)
	if err != nil {
		return nil, fmt.Errorf("stitching %d segments: %w", len(segments), err)
	}

	log.Printf("[DEBUG] Stitched %d segments into %.2fs of audio", len(segments), cursor)

	return &Result{
		Audio:           audio,
		DurationSeconds: cursor,
		Timeline:        timeline,
	}, nil
}
