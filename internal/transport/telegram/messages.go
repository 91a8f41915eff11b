package telegram

import (
	"bytes"
	"context"
	stderrors "errors"
	"time"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/channel-watch/internal/modules/message/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Subscribe delivers new posts of the given channels to handler, one at a
// time in arrival order, until the connection closes.
func (c *Client) Subscribe(ctx context.Context, channels []*channelDomain.Channel, handler func(context.Context, messageDomain.Event)) error {
	self, err := c.Self(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.handler = handler
	c.watched = lo.SliceToMap(channels, func(ch *channelDomain.Channel) (int64, *channelDomain.Channel) {
		return ch.ID, ch
	})
	c.mu.Unlock()

	c.log.Debug("Setting up new channel message handler",
		"channel_ids", lo.Map(channels, func(ch *channelDomain.Channel, _ int) int64 { return ch.ID }),
	)

	go func() {
		err := c.gaps.Run(c.runCtx, c.api, self.ID, updates.AuthOptions{
			OnStart: func(context.Context) {
				c.log.Info("Listening for new messages...", "channels", len(channels))
			},
		})
		if err != nil && !stderrors.Is(err, context.Canceled) {
			c.log.Error("Update loop stopped", "error", err)
			c.setErr(err)
			c.stop()
		}
	}()
	return nil
}

func (c *Client) onNewChannelMessage(ctx context.Context, _ tg.Entities, update *tg.UpdateNewChannelMessage) error {
	msg, ok := update.Message.(*tg.Message)
	if !ok {
		return nil
	}
	event, ok := toEvent(msg)
	if !ok {
		return nil
	}

	c.mu.Lock()
	handler := c.handler
	_, watched := c.watched[event.ChannelID]
	c.mu.Unlock()

	if handler == nil || !watched {
		return nil
	}
	handler(ctx, event)
	return nil
}

// RecentMessages returns the latest limit posts of channel, newest first
func (c *Client) RecentMessages(ctx context.Context, channel *channelDomain.Channel, limit int) ([]messageDomain.Event, error) {
	res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  inputChannelPeer(channel),
		Limit: limit,
	})
	if err != nil {
		return nil, oops.With("channel_id", channel.ID, "limit", limit).Wrap(err)
	}

	var messages []tg.MessageClass
	switch r := res.(type) {
	case *tg.MessagesMessages:
		messages = r.Messages
	case *tg.MessagesMessagesSlice:
		messages = r.Messages
	case *tg.MessagesChannelMessages:
		messages = r.Messages
	}

	events := make([]messageDomain.Event, 0, len(messages))
	for _, m := range messages {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}
		if event, ok := toEvent(msg); ok {
			events = append(events, event)
		}
	}
	return events, nil
}

// DownloadPhoto fetches the largest size of photo
func (c *Client) DownloadPhoto(ctx context.Context, photo *messageDomain.Photo) ([]byte, error) {
	var buf bytes.Buffer
	_, err := downloader.NewDownloader().Download(c.api, &tg.InputPhotoFileLocation{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
		ThumbSize:     photo.SizeType,
	}).Stream(ctx, &buf)
	if err != nil {
		return nil, oops.With("photo_id", photo.ID, "size", photo.SizeType).Wrap(err)
	}
	return buf.Bytes(), nil
}

// toEvent converts a channel post; posts outside channels are rejected
func toEvent(msg *tg.Message) (messageDomain.Event, bool) {
	peer, ok := msg.PeerID.(*tg.PeerChannel)
	if !ok {
		return messageDomain.Event{}, false
	}

	event := messageDomain.Event{
		ChannelID: peer.ChannelID,
		MessageID: int64(msg.ID),
		Date:      time.Unix(int64(msg.Date), 0),
		Text:      msg.Message,
		GroupedID: msg.GroupedID,
	}

	if media, ok := msg.Media.(*tg.MessageMediaPhoto); ok {
		if photo, ok := media.Photo.(*tg.Photo); ok {
			event.Photo = &messageDomain.Photo{
				ID:            photo.ID,
				AccessHash:    photo.AccessHash,
				FileReference: photo.FileReference,
				SizeType:      largestSize(photo.Sizes),
			}
		}
	}
	return event, true
}

// largestSize picks the size type with the most bytes
func largestSize(sizes []tg.PhotoSizeClass) string {
	best, bestBytes := "", -1
	for _, size := range sizes {
		var (
			typ string
			n   int
		)
		switch s := size.(type) {
		case *tg.PhotoSize:
			typ, n = s.Type, s.Size
		case *tg.PhotoSizeProgressive:
			typ, n = s.Type, lo.Max(s.Sizes)
		default:
			continue
		}
		if n > bestBytes {
			best, bestBytes = typ, n
		}
	}
	if best == "" {
		return "x"
	}
	return best
}
