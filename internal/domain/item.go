package domain

import "time"

// Item is a single feed entry tracked from ingestion to delivery.
type Item struct {
	ID          int64
	OriginID    string
	Title       string
	SourceName  string
	Description string
	PublishedAt *time.Time
	Summary     string
	Category    Category
	FetchedAt   time.Time
	Delivered   bool
}

// Enriched reports whether summary and category were already assigned.
func (i Item) Enriched() bool {
	return i.Summary != "" && i.Category.Valid()
}

// Entry is a normalized feed entry before it is persisted.
type Entry struct {
	OriginID    string
	Title       string
	SourceName  string
	Description string
	PublishedAt *time.Time
}

// Source is a configured feed endpoint.
type Source struct {
	Name    string
	URL     string
	Kind    string
	Options map[string]string
}
