package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/metrics"
	"NewsDigest/internal/ports"
)

// ReaderResolver finds the reader for a source kind.
type ReaderResolver interface {
	Resolve(kind string) (ports.FeedReader, error)
}

// IngestResult lists items stored by one ingestion pass.
type IngestResult struct {
	Items          []domain.Item
	SourceFailures int
}

// Ingestor polls sources one after another and stores unseen entries.
type Ingestor struct {
	readers ReaderResolver
	store   ports.ItemStore
	sources []domain.Source
	clock   *monotonicClock
	logger  *slog.Logger
}

// NewIngestor wires readers and storage; now defaults to time.Now.
func NewIngestor(readers ReaderResolver, store ports.ItemStore, sources []domain.Source, now func() time.Time, log *slog.Logger) *Ingestor {
	return &Ingestor{
		readers: readers,
		store:   store,
		sources: sources,
		clock:   newMonotonicClock(now),
		logger:  log,
	}
}

// Ingest fetches every source. A failing source is logged and skipped;
// storage errors abort the pass.
func (i *Ingestor) Ingest(ctx context.Context) (IngestResult, error) {
	var result IngestResult
	seen := make(map[string]bool)

	for _, src := range i.sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entries, err := i.read(ctx, src)
		if err != nil {
			result.SourceFailures++
			metrics.RecordSourceFailure(src.Name)
			i.warn("source failed", "source", src.Name, "error", err)
			continue
		}

		fresh := entries[:0]
		for _, entry := range entries {
			if seen[entry.OriginID] {
				continue
			}
			seen[entry.OriginID] = true
			fresh = append(fresh, entry)
		}

		items, err := i.persist(ctx, fresh)
		if err != nil {
			return result, fmt.Errorf("store entries of %s: %w", src.Name, err)
		}
		metrics.RecordIngested(src.Name, len(items))
		i.info("source ingested", "source", src.Name, "entries", len(entries), "new", len(items))
		result.Items = append(result.Items, items...)
	}

	return result, nil
}

func (i *Ingestor) read(ctx context.Context, src domain.Source) ([]domain.Entry, error) {
	reader, err := i.readers.Resolve(src.Kind)
	if err != nil {
		return nil, err
	}
	return reader.Read(ctx, src)
}

func (i *Ingestor) persist(ctx context.Context, entries []domain.Entry) ([]domain.Item, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]string, len(entries))
	for n, entry := range entries {
		ids[n] = entry.OriginID
	}
	existing, err := i.store.Existing(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load existing: %w", err)
	}

	var items []domain.Item
	for _, entry := range entries {
		if existing[entry.OriginID] {
			continue
		}
		item := domain.Item{
			OriginID:    entry.OriginID,
			Title:       entry.Title,
			SourceName:  entry.SourceName,
			Description: entry.Description,
			PublishedAt: entry.PublishedAt,
			FetchedAt:   i.clock.Now(),
		}
		inserted, err := i.store.InsertIfAbsent(ctx, item)
		if err != nil {
			return nil, err
		}
		if inserted {
			items = append(items, item)
		}
	}
	return items, nil
}

func (i *Ingestor) info(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}

func (i *Ingestor) warn(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}
