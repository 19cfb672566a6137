// Package digest assembles unsent items into one grouped, dated message.
package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NewsDigest/internal/ports"
)

// ErrNothingToDeliver is returned when no unsent item exists.
var ErrNothingToDeliver = errors.New("nothing to deliver")

// Digest is a rendered message plus the items it contains.
type Digest struct {
	Text        string
	OriginIDs   []string
	RegionCount int
	GlobalCount int
}

// Assembler reads unsent items and renders them. It never writes.
type Assembler struct {
	store ports.ItemStore
	opts  Options
	now   func() time.Time
}

// NewAssembler builds an assembler; now defaults to time.Now.
func NewAssembler(store ports.ItemStore, opts Options, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{store: store, opts: opts.withDefaults(), now: now}
}

// Assemble renders all unsent items or returns ErrNothingToDeliver.
func (a *Assembler) Assemble(ctx context.Context) (Digest, error) {
	items, err := a.store.Unsent(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("load unsent items: %w", err)
	}
	return Render(items, a.opts, a.now())
}

// Recent renders the last limit items regardless of delivery state.
func (a *Assembler) Recent(ctx context.Context, limit int) (string, error) {
	items, err := a.store.Recent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("load recent items: %w", err)
	}
	return RenderRecent(items, a.opts), nil
}
