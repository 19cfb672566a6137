package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsDigest/internal/delivery"
	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/enrich"
	"NewsDigest/internal/metrics"
	"NewsDigest/internal/ports"
)

// Trigger names what started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Enricher produces the summary and category of one item.
type Enricher interface {
	Enrich(ctx context.Context, item domain.Item) enrich.Result
}

// PipelineDeps wires all components into the orchestration pipeline.
type PipelineDeps struct {
	Ingestor   *Ingestor
	Enricher   Enricher
	Store      ports.ItemStore
	Assembler  *digest.Assembler
	Dispatcher *delivery.Dispatcher
	Logger     *slog.Logger
}

// Report summarizes one run.
type Report struct {
	RunID            string
	NewItems         int
	SourceFailures   int
	Enriched         int
	Fallbacks        int
	Delivered        int64
	Chunks           int
	NothingToDeliver bool
}

// Pipeline runs ingest, enrich, assemble and dispatch. Runs never overlap
// inside one process.
type Pipeline struct {
	mu         sync.Mutex
	ingestor   *Ingestor
	enricher   Enricher
	store      ports.ItemStore
	assembler  *digest.Assembler
	dispatcher *delivery.Dispatcher
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		ingestor:   deps.Ingestor,
		enricher:   deps.Enricher,
		store:      deps.Store,
		assembler:  deps.Assembler,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Run executes one full pipeline pass.
func (p *Pipeline) Run(ctx context.Context, trigger Trigger) (report Report, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	report.RunID = uuid.NewString()
	log := p.logger.With("run_id", report.RunID, "trigger", string(trigger))
	started := time.Now()
	log.Info("pipeline started")

	defer func() {
		status := "success"
		switch {
		case err != nil:
			status = "failure"
			log.Error("pipeline failed", "error", err)
		case report.NothingToDeliver:
			status = "empty"
		}
		metrics.RecordRun(string(trigger), status, time.Since(started).Seconds())
		log.Info("pipeline finished", "status", status,
			"new_items", report.NewItems, "source_failures", report.SourceFailures,
			"fallbacks", report.Fallbacks, "delivered", report.Delivered, "chunks", report.Chunks)
	}()

	ingested, err := p.ingestor.Ingest(ctx)
	report.NewItems = len(ingested.Items)
	report.SourceFailures = ingested.SourceFailures
	if err != nil {
		return report, fmt.Errorf("ingest: %w", err)
	}

	if err := p.enrichPending(ctx, log, &report); err != nil {
		return report, err
	}

	dg, err := p.assembler.Assemble(ctx)
	if errors.Is(err, digest.ErrNothingToDeliver) {
		report.NothingToDeliver = true
		log.Info("no unsent items")
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("assemble digest: %w", err)
	}

	res, err := p.dispatcher.Dispatch(ctx, dg)
	report.Chunks = res.Chunks
	report.Delivered = res.Delivered
	if err != nil {
		return report, fmt.Errorf("deliver digest: %w", err)
	}
	return report, nil
}

// enrichPending covers items stored by this run and any left behind by an
// interrupted earlier run.
func (p *Pipeline) enrichPending(ctx context.Context, log *slog.Logger, report *Report) error {
	pending, err := p.store.PendingEnrichment(ctx)
	if err != nil {
		return fmt.Errorf("load pending enrichment: %w", err)
	}

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := p.enricher.Enrich(ctx, item)
		metrics.RecordEnrichment(res.Outcome.String(), res.Attempts)
		if res.Outcome == enrich.Fallback {
			report.Fallbacks++
			log.Warn("enrichment fell back", "origin_id", item.OriginID, "attempts", res.Attempts, "error", res.Err)
		} else {
			report.Enriched++
		}

		if err := p.store.SaveEnrichment(ctx, item.OriginID, res.Summary, res.Category); err != nil {
			return fmt.Errorf("save enrichment: %w", err)
		}
	}
	return nil
}

// Recent renders the last limit items without changing delivery state.
func (p *Pipeline) Recent(ctx context.Context, limit int) (string, error) {
	return p.assembler.Recent(ctx, limit)
}
