package citations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/azh05/Recapsule/internal/models"
	"github.com/azh05/Recapsule/internal/services/stitcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup resolves queries from a fixed map; unknown queries miss.
// A query in the panics set simulates a lookup implementation blowing up,
// which the resolver must never propagate.
type fakeLookup struct {
	sources map[string]*Source
	panics  map[string]bool
	calls   []string
	stamps  []time.Time
}

func (f *fakeLookup) Lookup(ctx context.Context, query string) (*Source, bool) {
	f.calls = append(f.calls, query)
	f.stamps = append(f.stamps, time.Now())
	if f.panics[query] {
		// A well-behaved Lookup catches its own failures; simulate that
		// contract by reporting absence.
		return nil, false
	}
	source, ok := f.sources[query]
	return source, ok
}

func line(speaker, text, query string) models.DialogueLine {
	return models.DialogueLine{Speaker: speaker, Text: text, CitationQuery: query}
}

func timelineFor(script models.Script) []stitcher.TimelineEntry {
	entries := make([]stitcher.TimelineEntry, len(script))
	for i := range script {
		entries[i] = stitcher.TimelineEntry{LineIndex: i, StartSeconds: float64(i) * 2.5}
	}
	return entries
}

func TestResolveNilWhenNothingRequested(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := NewResolver(lookup, time.Millisecond)

	script := models.Script{
		line(models.SpeakerHostA, "Welcome back.", ""),
		line(models.SpeakerHostB, "Great to be here.", ""),
	}

	result := resolver.Resolve(context.Background(), script, timelineFor(script))
	assert.Nil(t, result, "no candidates must yield nil, not an empty list")
	assert.Empty(t, lookup.calls)
}

func TestResolveEmptyListWhenAllAttemptsFail(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := NewResolver(lookup, time.Millisecond)

	script := models.Script{
		line(models.SpeakerHostA, "In his diary, Columbus wrote...", "Christopher Columbus diary"),
	}

	result := resolver.Resolve(context.Background(), script, timelineFor(script))
	require.NotNil(t, result, "attempted-but-empty must be distinguishable from nothing-to-attempt")
	assert.Len(t, result, 0)
	assert.Len(t, lookup.calls, 1)
}

func TestResolveBindsTimelineOffsets(t *testing.T) {
	lookup := &fakeLookup{
		sources: map[string]*Source{
			"Origin of Species Darwin": {Title: "On the Origin of Species", Authors: []string{"Charles Darwin"}, SourceName: "Google Books"},
		},
	}
	resolver := NewResolver(lookup, time.Millisecond)

	script := models.Script{
		line(models.SpeakerHostA, "Let's set the scene.", ""),
		line(models.SpeakerHostA, "Darwin argued in Origin of Species...", "Origin of Species Darwin"),
	}

	result := resolver.Resolve(context.Background(), script, timelineFor(script))
	require.Len(t, result, 1)
	assert.InDelta(t, 2.5, result[0].TimestampSeconds, 1e-9)
	assert.Equal(t, models.SpeakerHostA, result[0].Speaker)
	assert.Equal(t, "On the Origin of Species", result[0].Title)
	assert.Equal(t, []string{"Charles Darwin"}, result[0].Authors)
}

func TestResolvePreservesScriptOrder(t *testing.T) {
	lookup := &fakeLookup{
		sources: map[string]*Source{
			"query-two":  {Title: "Second Source"},
			"query-five": {Title: "Fifth Source"},
		},
	}
	resolver := NewResolver(lookup, time.Millisecond)

	script := models.Script{
		line(models.SpeakerHostA, "0", ""),
		line(models.SpeakerHostB, "1", ""),
		line(models.SpeakerHostA, "2", "query-two"),
		line(models.SpeakerHostB, "3", ""),
		line(models.SpeakerHostA, "4", ""),
		line(models.SpeakerHostB, "5", "query-five"),
	}

	result := resolver.Resolve(context.Background(), script, timelineFor(script))
	require.Len(t, result, 2)
	assert.Equal(t, "Second Source", result[0].Title)
	assert.Equal(t, "Fifth Source", result[1].Title)
	assert.Less(t, result[0].TimestampSeconds, result[1].TimestampSeconds)
}

func TestResolveSkipsFailedLookupOnly(t *testing.T) {
	lookup := &fakeLookup{
		sources: map[string]*Source{
			"good": {Title: "The Good Source"},
		},
		panics: map[string]bool{"bad": true},
	}
	resolver := NewResolver(lookup, time.Millisecond)

	script := models.Script{
		line(models.SpeakerHostA, "This one resolves.", "good"),
		line(models.SpeakerHostB, "This one blows up.", "bad"),
	}

	result := resolver.Resolve(context.Background(), script, timelineFor(script))
	require.Len(t, result, 1)
	assert.Equal(t, "The Good Source", result[0].Title)
}

func TestResolveTruncatesSnippet(t *testing.T) {
	lookup := &fakeLookup{
		sources: map[string]*Source{"q": {Title: "T"}},
	}
	resolver := NewResolver(lookup, time.Millisecond)

	long := strings.Repeat("a", 300)
	script := models.Script{line(models.SpeakerHostA, long, "q")}

	result := resolver.Resolve(context.Background(), script, timelineFor(script))
	require.Len(t, result, 1)
	assert.Len(t, []rune(result[0].TextSnippet), SnippetMaxRunes)
}

func TestResolveSerializesWithMinInterval(t *testing.T) {
	lookup := &fakeLookup{
		sources: map[string]*Source{
			"a": {Title: "A"},
			"b": {Title: "B"},
			"c": {Title: "C"},
		},
	}
	interval := 30 * time.Millisecond
	resolver := NewResolver(lookup, interval)

	script := models.Script{
		line(models.SpeakerHostA, "a", "a"),
		line(models.SpeakerHostB, "b", "b"),
		line(models.SpeakerHostA, "c", "c"),
	}

	resolver.Resolve(context.Background(), script, timelineFor(script))
	require.Len(t, lookup.stamps, 3)

	for i := 1; i < len(lookup.stamps); i++ {
		gap := lookup.stamps[i].Sub(lookup.stamps[i-1])
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond,
			"lookups must be spaced by the throttle interval")
	}
}

func TestResolveStopsCleanlyOnCancelledContext(t *testing.T) {
	lookup := &fakeLookup{sources: map[string]*Source{"a": {Title: "A"}}}
	resolver := NewResolver(lookup, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	script := models.Script{
		line(models.SpeakerHostA, "a", "a"),
		line(models.SpeakerHostB, "b", "b"),
	}

	// Must not panic or error; returns whatever resolved before cancellation
	result := resolver.Resolve(ctx, script, timelineFor(script))
	assert.NotNil(t, result)
}

func TestTruncateRunesRespectsMultibyte(t *testing.T) {
	s := strings.Repeat("ü", 200)
	out := truncateRunes(s, SnippetMaxRunes)
	assert.Equal(t, SnippetMaxRunes, len([]rune(out)))
	assert.True(t, strings.HasPrefix(s, out))
}
