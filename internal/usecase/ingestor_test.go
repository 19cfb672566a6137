package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDigest/internal/domain"
)

func TestIngestDeduplicatesAcrossRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reader := &staticReader{entries: map[string][]domain.Entry{}}
	reader.set("A", entry("A", "1"), entry("A", "2"), entry("A", "3"))
	sources := []domain.Source{{Name: "A", Kind: "feed"}}
	store := newMemStore()
	ingestor := NewIngestor(singleResolver{reader}, store, sources, nil, nil)

	first, err := ingestor.Ingest(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Items, 3)

	reader.set("A", entry("A", "1"), entry("A", "2"), entry("A", "3"), entry("A", "4"))
	second, err := ingestor.Ingest(ctx)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "https://example.org/4", second.Items[0].OriginID)

	recent, err := store.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, recent, 4)
}

func TestIngestSkipsFailingSourceAndCrossSourceDuplicates(t *testing.T) {
	t.Parallel()

	reader := &staticReader{
		entries: map[string][]domain.Entry{},
		fail:    map[string]error{"Broken": errors.New("connection refused")},
	}
	reader.set("A", entry("A", "1"), entry("A", "2"), entry("A", "1"))
	reader.set("B", entry("B", "2"), entry("B", "3"))
	sources := []domain.Source{{Name: "A"}, {Name: "Broken"}, {Name: "B"}}

	res, err := NewIngestor(singleResolver{reader}, newMemStore(), sources, nil, nil).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.SourceFailures)

	var ids []string
	for _, item := range res.Items {
		ids = append(ids, item.OriginID)
		assert.Empty(t, item.Summary)
		assert.False(t, item.Delivered)
	}
	assert.Equal(t, []string{
		"https://example.org/1", "https://example.org/2", "https://example.org/3",
	}, ids)
	assert.Equal(t, "A", res.Items[1].SourceName)
}

func TestIngestFetchedAtNeverDecreases(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(time.Minute)}
	call := 0
	now := func() time.Time {
		t := times[call%len(times)]
		call++
		return t
	}

	reader := &staticReader{entries: map[string][]domain.Entry{}}
	reader.set("A", entry("A", "1"), entry("A", "2"), entry("A", "3"))
	res, err := NewIngestor(singleResolver{reader}, newMemStore(), []domain.Source{{Name: "A"}}, now, nil).
		Ingest(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	assert.True(t, res.Items[0].FetchedAt.Equal(base))
	assert.True(t, res.Items[1].FetchedAt.Equal(base))
	assert.True(t, res.Items[2].FetchedAt.Equal(base.Add(time.Minute)))
}

func TestIngestStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &staticReader{entries: map[string][]domain.Entry{}}
	_, err := NewIngestor(singleResolver{reader}, newMemStore(), []domain.Source{{Name: "A"}}, nil, nil).Ingest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
