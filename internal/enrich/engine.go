// Package enrich turns a stored item into a summary and a category with one
// bounded language model request per attempt.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/sanitize"
)

const (
	noSummary         = "No summary available"
	defaultAttempts   = 3
	defaultFallback   = 200
	maxSummaryLength  = 1000
	defaultBaseDelay  = time.Second
	defaultReqTimeout = 30 * time.Second
)

// Options configure retries and fallbacks. Zero values take defaults.
type Options struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Timeout        time.Duration
	FallbackLength int
	Labels         Labels
	// Limiter paces requests across items; nil means unlimited.
	Limiter *rate.Limiter
	// Sleep waits between attempts; nil uses ContextSleep.
	Sleep SleepFunc
}

// Engine enriches items sequentially. It never writes to storage.
type Engine struct {
	generator ports.TextGenerator
	opts      Options
	logger    *slog.Logger
}

// NewEngine applies option defaults.
func NewEngine(generator ports.TextGenerator, opts Options, log *slog.Logger) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultAttempts
	}
	if opts.BaseDelay < 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultReqTimeout
	}
	if opts.FallbackLength <= 0 {
		opts.FallbackLength = defaultFallback
	}
	if opts.Sleep == nil {
		opts.Sleep = ContextSleep
	}
	return &Engine{generator: generator, opts: opts, logger: log}
}

// Enrich always returns a usable result; failures end in the fallback.
func (e *Engine) Enrich(ctx context.Context, item domain.Item) Result {
	if e.generator == nil {
		return e.fallback(item, domain.DefaultCategory, 0, nil)
	}

	prompt := BuildPrompt(e.opts.Labels, item.Title, item.Description)

	var (
		lastErr  error
		attempts int
	)
	for attempt := 0; attempt < e.opts.MaxAttempts; attempt++ {
		if e.opts.Limiter != nil {
			if err := e.opts.Limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		attempts++
		response, err := e.generate(ctx, prompt)
		if err == nil {
			return e.fromResponse(item, response, attempts)
		}
		lastErr = err

		if !IsTransient(err) {
			e.warn("enrichment failed", "origin_id", item.OriginID, "attempt", attempts, "error", err)
			break
		}
		if attempt == e.opts.MaxAttempts-1 {
			e.warn("enrichment retries exhausted", "origin_id", item.OriginID, "attempts", attempts, "error", err)
			break
		}

		delay := Backoff(e.opts.BaseDelay, attempt)
		e.debug("enrichment retry", "origin_id", item.OriginID, "attempt", attempts, "delay", delay, "error", err)
		if err := e.opts.Sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return e.fallback(item, domain.DefaultCategory, attempts, lastErr)
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	return e.generator.Generate(callCtx, prompt)
}

func (e *Engine) fromResponse(item domain.Item, response string, attempts int) Result {
	parsed := ParseResponse(e.opts.Labels, response, maxSummaryLength)
	if !parsed.CategoryKnown {
		e.debug("unrecognized category, using default", "origin_id", item.OriginID)
	}
	if parsed.Summary == "" {
		e.warn("response without summary, using description", "origin_id", item.OriginID)
		return e.fallback(item, parsed.Category, attempts, nil)
	}
	return Result{
		Summary:  parsed.Summary,
		Category: parsed.Category.Coerce(),
		Outcome:  Enriched,
		Attempts: attempts,
	}
}

func (e *Engine) fallback(item domain.Item, category domain.Category, attempts int, cause error) Result {
	return Result{
		Summary:  FallbackSummary(item.Description, e.opts.FallbackLength),
		Category: category.Coerce(),
		Outcome:  Fallback,
		Attempts: attempts,
		Err:      cause,
	}
}

// FallbackSummary is the first n runes of the description.
func FallbackSummary(description string, n int) string {
	if strings.TrimSpace(description) == "" {
		return noSummary
	}
	return sanitize.Head(description, n)
}

func (e *Engine) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
