package citations

import (
	"context"
	"log"
	"time"

	"github.com/azh05/Recapsule/internal/models"
	"github.com/azh05/Recapsule/internal/services/stitcher"
	"golang.org/x/time/rate"
)

// SnippetMaxRunes bounds the stored excerpt of a cited line
const SnippetMaxRunes = 120

// DefaultMinInterval is the minimum spacing between lookup calls
const DefaultMinInterval = 500 * time.Millisecond

// Resolver matches citation-worthy script lines to resolved source metadata
// and binds each hit to the timeline offset of its originating line.
// Lookups are serialized through a rate limiter to respect the upstream
// source's rate limit; this trades latency for reliability on purpose.
type Resolver struct {
	lookup  Lookup
	limiter *rate.Limiter
}

// NewResolver creates a resolver that spaces lookup calls at least
// minInterval apart.
func NewResolver(lookup Lookup, minInterval time.Duration) *Resolver {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Resolver{
		lookup:  lookup,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Resolve returns citations for every line whose CitationQuery resolved, in
// script order. It returns nil when no line requested a citation, and a
// non-nil (possibly empty) list when at least one lookup was attempted; the
// two cases persist distinguishably (SQL NULL versus empty JSON array).
// Lookup misses and failures skip that line only; Resolve never errors.
func (r *Resolver) Resolve(ctx context.Context, script models.Script, timeline []stitcher.TimelineEntry) models.CitationList {
	var candidates []int
	for i, line := range script {
		if line.CitationQuery != "" {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	offsets := make(map[int]float64, len(timeline))
	for _, entry := range timeline {
		offsets[entry.LineIndex] = entry.StartSeconds
	}

	citations := make(models.CitationList, 0, len(candidates))
	for _, idx := range candidates {
		if err := r.limiter.Wait(ctx); err != nil {
			// Context gone; report what resolved so far
			log.Printf("[WARN] Citation throttle interrupted after %d of %d lookups: %v",
				len(citations), len(candidates), err)
			return citations
		}

		line := script[idx]
		source, ok := r.lookup.Lookup(ctx, line.CitationQuery)
		if !ok {
			log.Printf("[DEBUG] No citation resolved for line %d (%q)", idx, line.CitationQuery)
			continue
		}

		authors := source.Authors
		if authors == nil {
			authors = []string{}
		}

		citations = append(citations, models.Citation{
			TimestampSeconds: offsets[idx],
			Speaker:          line.Speaker,
			TextSnippet:      truncateRunes(line.Text, SnippetMaxRunes),
			Query:            line.CitationQuery,
			Title:            source.Title,
			Authors:          authors,
			PublishedDate:    source.PublishedDate,
			ThumbnailURL:     source.ThumbnailURL,
			SourceURL:        source.SourceURL,
			SourceName:       source.SourceName,
		})
	}

	log.Printf("[INFO] Resolved %d of %d citation queries", len(citations), len(candidates))
	return citations
}

// truncateRunes bounds s to max runes without splitting a character
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
