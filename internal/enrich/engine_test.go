package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDigest/internal/domain"
)

type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	fn      func(ctx context.Context, call int) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.fn(ctx, call)
}

type transientErr struct{ retry bool }

func (e transientErr) Error() string   { return "status error" }
func (e transientErr) Transient() bool { return e.retry }

type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testItem() domain.Item {
	return domain.Item{
		OriginID:    "https://example.org/a",
		Title:       "PromptPay volume grows",
		Description: strings.Repeat("x", 250),
	}
}

func TestEnrichSuccess(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{fn: func(context.Context, int) (string, error) {
		return "Sure.\nSUMMARY: Thai QR payments <b>doubled</b>.\nCATEGORY: Thailand-specific\n", nil
	}}
	engine := NewEngine(gen, Options{}, nil)

	res := engine.Enrich(context.Background(), testItem())
	assert.Equal(t, Enriched, res.Outcome)
	assert.Equal(t, "Thai QR payments doubled.", res.Summary)
	assert.Equal(t, domain.CategoryRegionSpecific, res.Category)
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Title: PromptPay volume grows")
	assert.Contains(t, gen.prompts[0], `"Global" or "Thailand-specific"`)
}

func TestEnrichTimeoutsFallBackAfterThreeAttempts(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{fn: func(ctx context.Context, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	sleeper := &recordingSleep{}
	engine := NewEngine(gen, Options{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Timeout:     5 * time.Millisecond,
		Sleep:       sleeper.sleep,
	}, nil)

	item := testItem()
	res := engine.Enrich(context.Background(), item)

	assert.Equal(t, Fallback, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, item.Description[:200], res.Summary)
	assert.Equal(t, domain.CategoryGlobal, res.Category)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestEnrichRecoversAfterTransientError(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{fn: func(_ context.Context, call int) (string, error) {
		if call == 1 {
			return "", transientErr{retry: true}
		}
		return "SUMMARY: ok\nCATEGORY: Global", nil
	}}
	sleeper := &recordingSleep{}
	engine := NewEngine(gen, Options{BaseDelay: 10 * time.Millisecond, Sleep: sleeper.sleep}, nil)

	res := engine.Enrich(context.Background(), testItem())
	assert.Equal(t, Enriched, res.Outcome)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, sleeper.delays)
}

func TestEnrichPermanentErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{fn: func(context.Context, int) (string, error) {
		return "", transientErr{retry: false}
	}}
	sleeper := &recordingSleep{}
	engine := NewEngine(gen, Options{Sleep: sleeper.sleep}, nil)

	item := testItem()
	item.Description = ""
	res := engine.Enrich(context.Background(), item)
	assert.Equal(t, Fallback, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, noSummary, res.Summary)
	assert.Empty(t, sleeper.delays)
}

func TestEnrichMissingSummaryKeepsCategory(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{fn: func(context.Context, int) (string, error) {
		return "CATEGORY: Thailand-specific", nil
	}}
	engine := NewEngine(gen, Options{FallbackLength: 10}, nil)

	res := engine.Enrich(context.Background(), testItem())
	assert.Equal(t, Fallback, res.Outcome)
	assert.Equal(t, "xxxxxxxxxx", res.Summary)
	assert.Equal(t, domain.CategoryRegionSpecific, res.Category)
	assert.NoError(t, res.Err)
}

func TestEnrichWithoutGenerator(t *testing.T) {
	t.Parallel()

	res := NewEngine(nil, Options{}, nil).Enrich(context.Background(), testItem())
	assert.Equal(t, Fallback, res.Outcome)
	assert.NotEmpty(t, res.Summary)
	assert.True(t, res.Category.Valid())
}

func TestEnrichResultAlwaysValid(t *testing.T) {
	t.Parallel()

	responses := []string{
		"",
		"garbage",
		"SUMMARY:\nCATEGORY:",
		"SUMMARY: s\nCATEGORY: Mars-specific",
		"summary: lower case\ncategory: region_specific",
	}
	for _, response := range responses {
		response := response
		gen := &stubGenerator{fn: func(context.Context, int) (string, error) { return response, nil }}
		res := NewEngine(gen, Options{}, nil).Enrich(context.Background(), domain.Item{OriginID: "x"})
		assert.NotEmpty(t, res.Summary, "response=%q", response)
		assert.True(t, res.Category.Valid(), "response=%q", response)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, Backoff(time.Second, 0))
	assert.Equal(t, 2*time.Second, Backoff(time.Second, 1))
	assert.Equal(t, 8*time.Second, Backoff(time.Second, 3))
	assert.Zero(t, Backoff(0, 4))
	assert.Zero(t, Backoff(time.Second, -1))
}

func TestBackoffIsCapped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MaxBackoff, Backoff(10*time.Second, 30))
	assert.Equal(t, MaxBackoff, Backoff(time.Minute, 4))
	assert.Equal(t, MaxBackoff, Backoff(time.Hour, 0))
	for attempt := 0; attempt < 64; attempt++ {
		assert.Positive(t, Backoff(30*time.Second, attempt), "attempt=%d", attempt)
	}
}

func TestContextSleepCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ContextSleep(ctx, time.Hour)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(transientErr{retry: true}))
	assert.False(t, IsTransient(transientErr{retry: false}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	labels := Labels{Region: "Vietnam"}
	parsed := ParseResponse(labels, "  SUMMARY:  first  \nSUMMARY: second\nCATEGORY:  Vietnam-specific ", 0)
	assert.Equal(t, "first", parsed.Summary)
	assert.Equal(t, domain.CategoryRegionSpecific, parsed.Category)
	assert.True(t, parsed.CategoryKnown)

	parsed = ParseResponse(labels, "SUMMARY: s\nCATEGORY: Thailand-specific", 0)
	assert.Equal(t, domain.CategoryGlobal, parsed.Category)
	assert.False(t, parsed.CategoryKnown)
}

func TestParseResponseCategoryMustMatchExactly(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"thailand-specific",
		"**Thailand-specific**",
		"Thailand-specific.",
		"\"Thailand-specific\"",
		"GLOBAL",
		"region_specific",
	} {
		parsed := ParseResponse(Labels{}, "SUMMARY: s\nCATEGORY: "+raw, 0)
		assert.Equal(t, domain.CategoryGlobal, parsed.Category, raw)
		assert.False(t, parsed.CategoryKnown, raw)
	}

	parsed := ParseResponse(Labels{}, "SUMMARY: s\nCATEGORY: Global", 0)
	assert.Equal(t, domain.CategoryGlobal, parsed.Category)
	assert.True(t, parsed.CategoryKnown)
}

func TestParseResponsePrefixesAreCaseSensitive(t *testing.T) {
	t.Parallel()

	parsed := ParseResponse(Labels{}, "summary: lower\ncategory: Thailand-specific", 0)
	assert.Empty(t, parsed.Summary)
	assert.Equal(t, domain.CategoryGlobal, parsed.Category)
	assert.False(t, parsed.CategoryKnown)

	parsed = ParseResponse(Labels{}, "SUMMARY: upper\nCATEGORY: Thailand-specific", 0)
	assert.Equal(t, "upper", parsed.Summary)
	assert.Equal(t, domain.CategoryRegionSpecific, parsed.Category)
}

func TestFallbackSummaryKeepsFirstRunes(t *testing.T) {
	t.Parallel()

	desc := strings.Repeat("a", 199) + " bcdef"
	gen := &stubGenerator{fn: func(context.Context, int) (string, error) {
		return "", transientErr{retry: false}
	}}
	engine := NewEngine(gen, Options{}, nil)

	item := testItem()
	item.Description = desc
	res := engine.Enrich(context.Background(), item)
	assert.Equal(t, Fallback, res.Outcome)
	assert.Equal(t, desc[:200], res.Summary)
	assert.Equal(t, "   ", FallbackSummary("   x", 3))
	assert.Equal(t, noSummary, FallbackSummary("  ", 3))
}
