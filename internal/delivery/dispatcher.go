// Package delivery sends rendered digests in bounded chunks and commits the
// delivered state only after every chunk went out.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsDigest/internal/digest"
	"NewsDigest/internal/ports"
)

// DefaultLimit is Telegram's message size in characters.
const DefaultLimit = 4096

// Error reports the chunk that failed; nothing was marked delivered.
type Error struct {
	Chunk int
	Total int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("send chunk %d/%d: %v", e.Chunk+1, e.Total, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result describes a finished delivery.
type Result struct {
	Chunks    int
	Delivered int64
}

// Observer is notified for every chunk sent; optional.
type Observer interface {
	ChunkSent()
	DeliveryFinished(err error)
}

// Dispatcher owns the send-then-commit sequence.
type Dispatcher struct {
	messenger ports.Messenger
	store     ports.ItemStore
	limit     int
	observer  Observer
	logger    *slog.Logger
}

// NewDispatcher builds a dispatcher; limit <= 0 uses DefaultLimit.
func NewDispatcher(messenger ports.Messenger, store ports.ItemStore, limit int, observer Observer, log *slog.Logger) *Dispatcher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Dispatcher{messenger: messenger, store: store, limit: limit, observer: observer, logger: log}
}

// Dispatch sends the digest in order and marks its items delivered in one
// update. Any send failure aborts without committing.
func (d *Dispatcher) Dispatch(ctx context.Context, dg digest.Digest) (res Result, err error) {
	if d.observer != nil {
		defer func() { d.observer.DeliveryFinished(err) }()
	}

	n, err := d.send(ctx, dg.Text)
	res.Chunks = n
	if err != nil {
		return res, err
	}

	res.Delivered, err = d.store.MarkDelivered(ctx, dg.OriginIDs)
	if err != nil {
		return res, fmt.Errorf("commit delivered state: %w", err)
	}
	d.info("digest delivered", "chunks", res.Chunks, "items", res.Delivered)
	return res, nil
}

// SendText delivers an arbitrary reply using the same chunking. No state changes.
func (d *Dispatcher) SendText(ctx context.Context, text string) error {
	_, err := d.send(ctx, text)
	return err
}

func (d *Dispatcher) send(ctx context.Context, text string) (int, error) {
	chunks, truncated := Split(text, d.limit)
	if truncated > 0 {
		d.warn("lines truncated to fit message limit", "lines", truncated, "limit", d.limit)
	}

	sent := 0
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if err := d.messenger.Send(ctx, chunk); err != nil {
			return sent, &Error{Chunk: i, Total: len(chunks), Err: err}
		}
		sent++
		if d.observer != nil {
			d.observer.ChunkSent()
		}
	}
	return sent, nil
}

func (d *Dispatcher) info(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *Dispatcher) warn(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
