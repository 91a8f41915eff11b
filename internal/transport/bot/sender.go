package bot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/oops"
)

// Sender relays notifications through the Bot API
type Sender struct {
	bot *tgbot.Bot
	log *slog.Logger
}

// NewSender creates a bot relay sender
func NewSender(b *tgbot.Bot, log *slog.Logger) *Sender {
	return &Sender{
		bot: b,
		log: log,
	}
}

// SendText sends an HTML message
func (s *Sender) SendText(ctx context.Context, recipient, html string) error {
	_, err := s.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID(recipient),
		Text:      html,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return oops.With("recipient", recipient, "method", "sendMessage").Wrap(err)
	}
	return nil
}

// SendPhoto uploads one photo with an HTML caption
func (s *Sender) SendPhoto(ctx context.Context, recipient string, photo []byte, caption string) error {
	_, err := s.bot.SendPhoto(ctx, &tgbot.SendPhotoParams{
		ChatID:    chatID(recipient),
		Photo:     &models.InputFileUpload{Filename: "photo.jpg", Data: bytes.NewReader(photo)},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return oops.With("recipient", recipient, "method", "sendPhoto").Wrap(err)
	}
	return nil
}

// SendAlbum uploads photos as one media group, captioned on the first item
func (s *Sender) SendAlbum(ctx context.Context, recipient string, photos [][]byte, caption string) error {
	media := make([]models.InputMedia, 0, len(photos))
	for i, photo := range photos {
		name := fmt.Sprintf("photo%d", i)
		item := &models.InputMediaPhoto{
			Media:           "attach://" + name,
			MediaAttachment: bytes.NewReader(photo),
		}
		if i == 0 {
			item.Caption = caption
			item.ParseMode = models.ParseModeHTML
		}
		media = append(media, item)
	}

	_, err := s.bot.SendMediaGroup(ctx, &tgbot.SendMediaGroupParams{
		ChatID: chatID(recipient),
		Media:  media,
	})
	if err != nil {
		return oops.With("recipient", recipient, "method", "sendMediaGroup", "photos", len(photos)).Wrap(err)
	}
	return nil
}

// chatID passes numeric recipients as ids and anything else (an @handle)
// unchanged
func chatID(recipient string) any {
	if id, err := strconv.ParseInt(recipient, 10, 64); err == nil {
		return id
	}
	return recipient
}
