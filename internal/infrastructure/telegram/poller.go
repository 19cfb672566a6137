package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const errorBackoff = 5 * time.Second

// CommandFunc receives the text of an accepted command message.
type CommandFunc func(ctx context.Context, text string)

// Poller long polls getUpdates and forwards commands from one chat.
type Poller struct {
	client    *Client
	chatID    string
	timeout   time.Duration
	onCommand CommandFunc
	logger    *slog.Logger
	offset    int64
}

// NewPoller accepts commands only from chatID.
func NewPoller(client *Client, chatID string, timeout time.Duration, onCommand CommandFunc, log *slog.Logger) *Poller {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Poller{client: client, chatID: chatID, timeout: timeout, onCommand: onCommand, logger: log}
}

// Run polls until ctx is cancelled. Commands are handled one at a time.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.warn("get updates failed", "error", err)
			if !sleep(ctx, errorBackoff) {
				return nil
			}
			continue
		}

		for _, update := range updates {
			p.Dispatch(ctx, update)
		}
	}
}

// Dispatch handles one update and advances the offset past it.
func (p *Poller) Dispatch(ctx context.Context, update Update) {
	if update.UpdateID >= p.offset {
		p.offset = update.UpdateID + 1
	}

	msg := update.Message
	if msg == nil || !strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
		return
	}
	if strconv.FormatInt(msg.Chat.ID, 10) != p.chatID {
		p.debug("ignoring command from other chat", "chat_id", msg.Chat.ID)
		return
	}
	if p.onCommand != nil {
		p.onCommand(ctx, msg.Text)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Poller) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Poller) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
