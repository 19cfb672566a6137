package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"NewsDigest/internal/ports"
)

const maxRetryAfter = time.Minute

// Notifier sends messages to the configured chat, pacing them with a limiter.
type Notifier struct {
	client  *Client
	chatID  string
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.Messenger = (*Notifier)(nil)

// NewNotifier registers the chat identifier; interval <= 0 disables pacing.
func NewNotifier(client *Client, chatID string, interval time.Duration, log *slog.Logger) *Notifier {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Notifier{client: client, chatID: chatID, limiter: limiter, logger: log}
}

// Send posts one message. A flood-control answer is waited out once.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if n.client == nil || n.chatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	err := n.client.SendMessage(ctx, n.chatID, text)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 || apiErr.RetryAfter > maxRetryAfter {
		return err
	}

	if n.logger != nil {
		n.logger.Warn("telegram flood control, waiting", "retry_after", apiErr.RetryAfter)
	}
	timer := time.NewTimer(apiErr.RetryAfter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	return n.client.SendMessage(ctx, n.chatID, text)
}
