package feeds

import (
	"fmt"

	"NewsDigest/internal/ports"
)

// Registry keeps a mapping from source kinds to their readers.
type Registry struct {
	readers map[string]ports.FeedReader
}

// NewRegistry builds a registry holding the given readers.
func NewRegistry(readers ...ports.FeedReader) *Registry {
	r := &Registry{readers: map[string]ports.FeedReader{}}
	for _, reader := range readers {
		r.Register(reader)
	}
	return r
}

// Register adds or replaces a reader implementation.
func (r *Registry) Register(reader ports.FeedReader) {
	if r.readers == nil {
		r.readers = map[string]ports.FeedReader{}
	}
	r.readers[reader.Kind()] = reader
}

// Resolve returns a reader by kind or an error if it is absent.
func (r *Registry) Resolve(kind string) (ports.FeedReader, error) {
	if reader, ok := r.readers[kind]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("feed reader %q is not registered", kind)
}
