package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

type memStore struct {
	mu    sync.Mutex
	items map[string]*domain.Item
	seq   int64
}

var _ ports.ItemStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*domain.Item)}
}

func (s *memStore) Existing(_ context.Context, ids []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *memStore) InsertIfAbsent(_ context.Context, item domain.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.OriginID]; ok {
		return false, nil
	}
	s.seq++
	item.ID = s.seq
	s.items[item.OriginID] = &item
	return true, nil
}

func (s *memStore) SaveEnrichment(_ context.Context, id, summary string, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return errors.New("not found")
	}
	item.Summary = summary
	item.Category = c.Coerce()
	return nil
}

func (s *memStore) filter(keep func(domain.Item) bool, asc bool) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Item
	for _, item := range s.items {
		if keep(*item) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *memStore) PendingEnrichment(context.Context) ([]domain.Item, error) {
	return s.filter(func(i domain.Item) bool { return i.Summary == "" }, true), nil
}

func (s *memStore) Unsent(context.Context) ([]domain.Item, error) {
	return s.filter(func(i domain.Item) bool { return !i.Delivered && i.Summary != "" }, false), nil
}

func (s *memStore) Recent(_ context.Context, limit int) ([]domain.Item, error) {
	all := s.filter(func(domain.Item) bool { return true }, false)
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) MarkDelivered(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if item, ok := s.items[id]; ok && !item.Delivered {
			item.Delivered = true
			n++
		}
	}
	return n, nil
}

func (s *memStore) get(id string) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[id]
}

type staticReader struct {
	mu      sync.Mutex
	entries map[string][]domain.Entry
	fail    map[string]error
}

func (r *staticReader) Kind() string { return "feed" }

func (r *staticReader) Read(_ context.Context, src domain.Source) ([]domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[src.Name]; err != nil {
		return nil, err
	}
	return append([]domain.Entry(nil), r.entries[src.Name]...), nil
}

func (r *staticReader) set(source string, entries ...domain.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[source] = entries
}

type singleResolver struct{ reader ports.FeedReader }

func (s singleResolver) Resolve(string) (ports.FeedReader, error) { return s.reader, nil }

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMessenger) Send(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, text)
	return nil
}

func (m *recordingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func entry(source, id string) domain.Entry {
	return domain.Entry{
		OriginID:    "https://example.org/" + id,
		Title:       "Title " + id,
		SourceName:  source,
		Description: "Description " + id,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
