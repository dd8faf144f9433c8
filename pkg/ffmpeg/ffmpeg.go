package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality. It implements the audio
// codec capability consumed by the stitcher: probing per-segment durations
// and rendering the final MP3 with silence gaps between segments.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	tempDir     string
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration, tempDir string) *FFmpeg {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		tempDir:     tempDir,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}
	return nil
}

// Duration probes the playable duration in seconds of one encoded segment
func (f *FFmpeg) Duration(ctx context.Context, data []byte) (float64, error) {
	if len(data) == 0 {
		return 0, ErrInvalidAudioData
	}

	segFile, err := f.writeTemp("probe_*.mp3", data)
	if err != nil {
		return 0, err
	}
	defer os.Remove(segFile)

	metadata, err := f.GetMetadata(ctx, segFile)
	if err != nil {
		return 0, err
	}
	return metadata.Duration, nil
}

// Stitch concatenates segments into a single MP3. gaps[i] is the silence in
// seconds rendered immediately before segment i; gaps[0] must be zero. The
// output is re-encoded to a uniform mono 44.1kHz 128k stream so TTS segments
// with differing encoder settings concatenate cleanly.
func (f *FFmpeg) Stitch(ctx context.Context, segments [][]byte, gaps []float64) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if len(gaps) != len(segments) {
		return nil, fmt.Errorf("gap count %d does not match segment count %d", len(gaps), len(segments))
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	workDir, err := os.MkdirTemp(f.tempDir, "stitch_")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempFileCreation, err)
	}
	defer os.RemoveAll(workDir)

	// One silence file per distinct gap length
	silenceFiles := make(map[float64]string)
	for _, gap := range gaps {
		if gap <= 0 {
			continue
		}
		if _, ok := silenceFiles[gap]; ok {
			continue
		}
		silencePath := filepath.Join(workDir, fmt.Sprintf("silence_%dms.mp3", int(gap*1000)))
		if err := f.renderSilence(ctx, silencePath, gap); err != nil {
			return nil, err
		}
		silenceFiles[gap] = silencePath
	}

	// Concat demuxer list: silence file (when gapped) then segment, in order
	var list bytes.Buffer
	for i, segment := range segments {
		if gaps[i] > 0 {
			fmt.Fprintf(&list, "file '%s'\n", silenceFiles[gaps[i]])
		}
		segPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp3", i))
		if err := os.WriteFile(segPath, segment, 0644); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTempFileCreation, err)
		}
		fmt.Fprintf(&list, "file '%s'\n", segPath)
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, list.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempFileCreation, err)
	}

	outPath := filepath.Join(workDir, "stitched.mp3")
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-ac", "1",
		"-ar", "44100",
		"-c:a", "libmp3lame",
		"-b:a", "128k",
		outPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewProcessingError("concat", listPath, err, stderr.String())
	}

	stitched, err := os.ReadFile(outPath)
	if err != nil {
		return nil, NewProcessingError("concat_read", outPath, err, "")
	}
	return stitched, nil
}

// renderSilence generates a mono silence MP3 of the given length
func (f *FFmpeg) renderSilence(ctx context.Context, outPath string, seconds float64) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=mono:sample_rate=44100",
		"-t", fmt.Sprintf("%.3f", seconds),
		"-c:a", "libmp3lame",
		"-b:a", "128k",
		outPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return NewProcessingError("silence_generation", outPath, err, stderr.String())
	}
	return nil
}

// writeTemp writes data to a temporary file and returns its path
func (f *FFmpeg) writeTemp(pattern string, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp(f.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTempFileCreation, err)
	}
	path := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrTempFileCreation, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrTempFileCreation, err)
	}
	return path, nil
}
