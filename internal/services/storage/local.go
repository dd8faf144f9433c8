package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes audio files to a directory on disk. The HTTP layer
// serves that directory at /audio, so returned URLs point there.
type LocalStore struct {
	audioDir  string
	publicURL string
}

// NewLocalStore creates a local filesystem store rooted at audioDir
func NewLocalStore(audioDir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}

	return &LocalStore{
		audioDir:  audioDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// SaveAudio writes data to audioDir and returns the public /audio URL.
// Filenames with path separators are rejected to keep writes inside audioDir.
func (s *LocalStore) SaveAudio(_ context.Context, filename string, data []byte) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid audio filename %q", filename)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to save empty audio file %q", filename)
	}

	path := filepath.Join(s.audioDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing audio file: %w", err)
	}

	return fmt.Sprintf("%s/audio/%s", s.publicURL, filename), nil
}
