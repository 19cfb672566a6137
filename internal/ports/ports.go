package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// FeedReader fetches and normalizes the entries of a single source.
type FeedReader interface {
	Kind() string
	Read(ctx context.Context, src domain.Source) ([]domain.Entry, error)
}

// ItemStore persists items and their delivery state.
type ItemStore interface {
	// Existing returns the subset of ids already stored.
	Existing(ctx context.Context, originIDs []string) (map[string]bool, error)
	// InsertIfAbsent stores a new item; inserted is false when the origin id already exists.
	InsertIfAbsent(ctx context.Context, item domain.Item) (inserted bool, err error)
	// SaveEnrichment overwrites summary and category of an existing item.
	SaveEnrichment(ctx context.Context, originID, summary string, category domain.Category) error
	// PendingEnrichment lists items created but never enriched.
	PendingEnrichment(ctx context.Context) ([]domain.Item, error)
	// Unsent lists enriched items with delivered=false.
	Unsent(ctx context.Context) ([]domain.Item, error)
	// Recent lists the last limit items ordered by fetched_at descending.
	Recent(ctx context.Context, limit int) ([]domain.Item, error)
	// MarkDelivered flips delivered to true for all ids in one transaction.
	MarkDelivered(ctx context.Context, originIDs []string) (int64, error)
}

// TextGenerator sends a single prompt to a language model.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Messenger delivers one message to the configured chat destination.
type Messenger interface {
	Send(ctx context.Context, text string) error
}

// Ticker drives periodic checks.
type Ticker interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
