package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	pipelineDomain "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// ChannelLister lists the watched channels
type ChannelLister interface {
	GetAllChannels() ([]*channelDomain.Channel, error)
}

// Handler answers the relay bot's commands
type Handler struct {
	cfg      *config.Config
	stats    *pipelineDomain.RunStats
	channels ChannelLister
	log      *slog.Logger
}

// NewHandler creates a new bot command handler
func NewHandler(cfg *config.Config, stats *pipelineDomain.RunStats, channels ChannelLister, log *slog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		stats:    stats,
		channels: channels,
		log:      log,
	}
}

// New creates the Bot API client with the command handlers registered
func New(cfg *config.Config, h *Handler, opts ...tgbot.Option) (*tgbot.Bot, error) {
	opts = append([]tgbot.Option{tgbot.WithDefaultHandler(h.handleDefault)}, opts...)

	b, err := tgbot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, oops.With("context", "failed to create bot").Wrap(err)
	}
	h.RegisterCommands(b)
	return b, nil
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *tgbot.Bot) {
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/status", tgbot.MatchTypeExact, h.handleStatus)
}

func (h *Handler) isRecipient(chatID int64, username string) bool {
	id := strconv.FormatInt(chatID, 10)
	return slices.ContainsFunc(h.cfg.Recipients, func(r string) bool {
		return r == id || (username != "" && strings.EqualFold(strings.TrimPrefix(r, "@"), username))
	})
}

func (h *Handler) handleDefault(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message != nil {
		h.log.Debug("Ignoring bot message", "chat_id", update.Message.Chat.ID)
	}
}

func (h *Handler) handleStart(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chat := update.Message.Chat

	text := fmt.Sprintf(`👋 channel-watch relay bot

Your chat id: %d

Matches from the watched channels are delivered here once this id is listed in TELEGRAM_USER_IDS.

Available commands:
/help - Show this help message
/status - Show watcher status`, chat.ID)

	if h.isRecipient(chat.ID, chat.Username) {
		text += "\n\n✅ You are subscribed to notifications."
	}

	h.reply(ctx, b, chat.ID, text)
}

func (h *Handler) handleStatus(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chat := update.Message.Chat

	if !h.isRecipient(chat.ID, chat.Username) {
		h.reply(ctx, b, chat.ID, "❌ Unauthorized")
		return
	}

	channels, err := h.channels.GetAllChannels()
	if err != nil {
		h.reply(ctx, b, chat.ID, fmt.Sprintf("❌ Failed to get status: %v", err))
		return
	}

	snap := h.stats.Snapshot(time.Now())
	names := lo.Map(channels, func(ch *channelDomain.Channel, _ int) string { return ch.DisplayName() })

	text := fmt.Sprintf(`📊 Watcher Status:

Uptime: %s
Messages observed: %d
Matches found: %d
Channels (%d): %s
Keywords: %s`,
		snap.Uptime.Round(time.Second), snap.Observed, snap.Matched,
		len(channels), strings.Join(names, ", "),
		strings.Join(h.cfg.Keywords, ", "))

	h.reply(ctx, b, chat.ID, text)
}

func (h *Handler) reply(ctx context.Context, b *tgbot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		h.log.Error("Failed to reply to command", "chat_id", chatID, "error", err)
	}
}
