package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDigest/internal/delivery"
)

type stubService struct {
	report      Report
	runErr      error
	recent      string
	recentErr   error
	runs        int
	recentLimit int
}

func (s *stubService) Run(context.Context, Trigger) (Report, error) {
	s.runs++
	return s.report, s.runErr
}

func (s *stubService) Recent(_ context.Context, limit int) (string, error) {
	s.recentLimit = limit
	return s.recent, s.recentErr
}

type replies struct{ texts []string }

func (r *replies) reply(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/digest":               "digest",
		"/Digest@NewsDigestBot": "digest",
		"  /latest please":      "latest",
		"!recent":               "recent",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseCommand(in), "in=%q", in)
	}
}

func TestHandleDigest(t *testing.T) {
	t.Parallel()

	svc := &stubService{report: Report{NewItems: 4}}
	r := &replies{}
	require.NoError(t, NewCommandHandler(svc, 5, nil).Handle(context.Background(), "/digest", r.reply))

	assert.Equal(t, []string{msgDigestAck, "✅ Digest complete! Processed 4 new articles."}, r.texts)
	assert.Equal(t, 1, svc.runs)
}

func TestHandleDigestNothingNew(t *testing.T) {
	t.Parallel()

	r := &replies{}
	svc := &stubService{report: Report{NothingToDeliver: true}}
	require.NoError(t, NewCommandHandler(svc, 5, nil).Handle(context.Background(), "/digest", r.reply))
	assert.Equal(t, []string{msgDigestAck, msgNothingNew}, r.texts)
}

func TestHandleDigestErrors(t *testing.T) {
	t.Parallel()

	r := &replies{}
	svc := &stubService{runErr: fmt.Errorf("deliver digest: %w", &delivery.Error{Chunk: 1, Total: 2, Err: errors.New("flood wait")})}
	require.NoError(t, NewCommandHandler(svc, 5, nil).Handle(context.Background(), "/digest", r.reply))
	require.Len(t, r.texts, 2)
	assert.Equal(t, "❌ Error delivering digest: flood wait", r.texts[1])

	r = &replies{}
	svc = &stubService{runErr: errors.New("ingest: database is locked")}
	require.NoError(t, NewCommandHandler(svc, 5, nil).Handle(context.Background(), "/digest", r.reply))
	assert.Equal(t, "❌ Error generating digest: ingest: database is locked", r.texts[1])
}

func TestHandleRecent(t *testing.T) {
	t.Parallel()

	r := &replies{}
	svc := &stubService{recent: "📰 <b>Latest 2 Articles</b>"}
	h := NewCommandHandler(svc, 7, nil)
	require.NoError(t, h.Handle(context.Background(), "/latest", r.reply))
	assert.Equal(t, []string{svc.recent}, r.texts)
	assert.Equal(t, 7, svc.recentLimit)
	assert.Zero(t, svc.runs)

	r = &replies{}
	require.NoError(t, NewCommandHandler(&stubService{}, 5, nil).Handle(context.Background(), "/recent", r.reply))
	assert.Equal(t, []string{msgNoArticles}, r.texts)
}

func TestHandleHelpAndUnknown(t *testing.T) {
	t.Parallel()

	r := &replies{}
	h := NewCommandHandler(&stubService{}, 5, nil)
	require.NoError(t, h.Handle(context.Background(), "/start", r.reply))
	require.NoError(t, h.Handle(context.Background(), "/weather", r.reply))
	require.NoError(t, h.Handle(context.Background(), "   ", r.reply))
	assert.Equal(t, []string{helpText, msgUnknown}, r.texts)
}
