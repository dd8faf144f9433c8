// Package storage persists finished episode audio and hands back the public
// URL listeners fetch it from.
package storage

import "context"

// Store saves rendered episode audio under a filename and returns the URL
// at which the file is publicly reachable.
type Store interface {
	SaveAudio(ctx context.Context, filename string, data []byte) (string, error)
}
