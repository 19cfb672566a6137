package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"NewsDigest/internal/delivery"
)

const (
	msgDigestAck     = "Fetching and processing latest news... This may take a moment."
	msgNothingNew    = "No new articles to report."
	msgDigestDone    = "✅ Digest complete! Processed %d new articles."
	msgNoArticles    = "No articles found in the database."
	msgUnknown       = "Unknown command. Send /help for the list of commands."
	msgDeliveryError = "❌ Error delivering digest: %v"
	msgDigestError   = "❌ Error generating digest: %v"
	msgRecentError   = "❌ Database error: %v"
)

const helpText = `<b>Available commands</b>
/digest - fetch, summarize and send a digest now
/latest - show the most recent articles
/help - show this message`

// Reply sends a response to whoever issued the command.
type Reply func(ctx context.Context, text string) error

// DigestService is what the command handler needs from the pipeline.
type DigestService interface {
	Run(ctx context.Context, trigger Trigger) (Report, error)
	Recent(ctx context.Context, limit int) (string, error)
}

// CommandHandler maps chat commands to pipeline operations.
type CommandHandler struct {
	service     DigestService
	recentLimit int
	logger      *slog.Logger
}

// NewCommandHandler builds the handler; recentLimit is the size of /latest.
func NewCommandHandler(service DigestService, recentLimit int, log *slog.Logger) *CommandHandler {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &CommandHandler{service: service, recentLimit: recentLimit, logger: log}
}

// ParseCommand extracts the command word from "/digest@NewsBot extra".
func ParseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.TrimLeft(fields[0], "/!")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}

// Handle runs the command in text and answers through reply. The returned
// error only reports a failed reply.
func (h *CommandHandler) Handle(ctx context.Context, text string, reply Reply) error {
	switch cmd := ParseCommand(text); cmd {
	case "digest":
		return h.digest(ctx, reply)
	case "latest", "recent":
		return h.recent(ctx, reply)
	case "help", "start":
		return reply(ctx, helpText)
	case "":
		return nil
	default:
		h.debug("unknown command", "command", cmd)
		return reply(ctx, msgUnknown)
	}
}

func (h *CommandHandler) digest(ctx context.Context, reply Reply) error {
	h.info("digest command received")
	if err := reply(ctx, msgDigestAck); err != nil {
		return err
	}

	report, err := h.service.Run(ctx, TriggerManual)
	if err != nil {
		var derr *delivery.Error
		if errors.As(err, &derr) {
			return reply(ctx, fmt.Sprintf(msgDeliveryError, derr.Err))
		}
		return reply(ctx, fmt.Sprintf(msgDigestError, err))
	}
	if report.NothingToDeliver {
		return reply(ctx, msgNothingNew)
	}
	return reply(ctx, fmt.Sprintf(msgDigestDone, report.NewItems))
}

func (h *CommandHandler) recent(ctx context.Context, reply Reply) error {
	text, err := h.service.Recent(ctx, h.recentLimit)
	if err != nil {
		h.logError("recent command failed", "error", err)
		return reply(ctx, fmt.Sprintf(msgRecentError, err))
	}
	if text == "" {
		return reply(ctx, msgNoArticles)
	}
	return reply(ctx, text)
}

func (h *CommandHandler) debug(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}

func (h *CommandHandler) info(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Info(msg, args...)
	}
}

func (h *CommandHandler) logError(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}
