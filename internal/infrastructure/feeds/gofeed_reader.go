package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// KindFeed identifies RSS, Atom and JSON Feed sources.
const KindFeed = "feed"

// GofeedReader fetches syndication feeds through gofeed.
type GofeedReader struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.FeedReader = (*GofeedReader)(nil)

// NewGofeedReader wires an HTTP client; a nil client gets a 20 second timeout.
func NewGofeedReader(client *http.Client, log *slog.Logger) *GofeedReader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &GofeedReader{client: client, logger: log}
}

// Kind identifies the reader inside the registry.
func (r *GofeedReader) Kind() string {
	return KindFeed
}

// Read downloads and parses the feed, skipping entries without a usable link.
func (r *GofeedReader) Read(ctx context.Context, src domain.Source) ([]domain.Entry, error) {
	parser := gofeed.NewParser()
	parser.Client = r.client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		description := item.Description
		if description == "" {
			description = item.Content
		}

		entry, err := normalizeEntry(src.Name, rawEntry{
			Title:       item.Title,
			Link:        item.Link,
			Description: description,
			Published:   item.Published,
			PublishedAt: published,
		})
		if err != nil {
			r.debug("skip feed entry", "source", src.Name, "link", item.Link, "reason", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *GofeedReader) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
