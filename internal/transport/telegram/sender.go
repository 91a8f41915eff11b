package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/html"
	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/oops"
)

// Sender relays notifications from the watching account itself. It sends
// through whichever connection was attached last.
type Sender struct {
	mu     sync.RWMutex
	client *Client
}

// NewSender creates a same-account relay sender
func NewSender() *Sender {
	return &Sender{}
}

// Use attaches the live connection
func (s *Sender) Use(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

func (s *Sender) conn() (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errors.ErrNotConnected
	}
	return s.client, nil
}

// SendText sends an HTML message
func (s *Sender) SendText(ctx context.Context, recipient, text string) error {
	client, err := s.conn()
	if err != nil {
		return err
	}
	to, err := client.resolveRecipient(ctx, recipient)
	if err != nil {
		return err
	}

	if _, err := message.NewSender(client.api).To(to).StyledText(ctx, html.String(nil, text)); err != nil {
		return oops.With("recipient", recipient, "method", "text").Wrap(err)
	}
	return nil
}

// SendPhoto uploads one photo with an HTML caption
func (s *Sender) SendPhoto(ctx context.Context, recipient string, photo []byte, caption string) error {
	client, err := s.conn()
	if err != nil {
		return err
	}
	to, err := client.resolveRecipient(ctx, recipient)
	if err != nil {
		return err
	}

	file, err := uploader.NewUploader(client.api).FromBytes(ctx, "photo.jpg", photo)
	if err != nil {
		return oops.With("recipient", recipient, "method", "photo").Wrap(err)
	}

	if _, err := message.NewSender(client.api).To(to).Media(ctx, message.UploadedPhoto(file, html.String(nil, caption))); err != nil {
		return oops.With("recipient", recipient, "method", "photo").Wrap(err)
	}
	return nil
}

// SendAlbum uploads photos as one album, captioned on the first item
func (s *Sender) SendAlbum(ctx context.Context, recipient string, photos [][]byte, caption string) error {
	client, err := s.conn()
	if err != nil {
		return err
	}
	to, err := client.resolveRecipient(ctx, recipient)
	if err != nil {
		return err
	}

	up := uploader.NewUploader(client.api)
	items := make([]message.MultiMediaOption, 0, len(photos))
	for i, photo := range photos {
		file, err := up.FromBytes(ctx, "photo"+strconv.Itoa(i)+".jpg", photo)
		if err != nil {
			return oops.With("recipient", recipient, "method", "album", "photo", i).Wrap(err)
		}
		if i == 0 {
			items = append(items, message.UploadedPhoto(file, html.String(nil, caption)))
			continue
		}
		items = append(items, message.UploadedPhoto(file))
	}

	if _, err := message.NewSender(client.api).To(to).Album(ctx, items[0], items[1:]...); err != nil {
		return oops.With("recipient", recipient, "method", "album", "photos", len(photos)).Wrap(err)
	}
	return nil
}

// resolveRecipient maps "me", an @handle or a numeric id from the recent
// dialogs to an input peer
func (c *Client) resolveRecipient(ctx context.Context, recipient string) (tg.InputPeerClass, error) {
	key := "recipient:" + recipient

	c.mu.Lock()
	cached, ok := c.peers[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	resolved, err := c.lookupRecipient(ctx, strings.TrimSpace(recipient))
	if err != nil {
		return nil, oops.With("recipient", recipient).Wrap(err)
	}

	c.mu.Lock()
	c.peers[key] = resolved
	c.mu.Unlock()
	return resolved, nil
}

func (c *Client) lookupRecipient(ctx context.Context, recipient string) (tg.InputPeerClass, error) {
	switch {
	case recipient == "me" || recipient == "self":
		return &tg.InputPeerSelf{}, nil
	case strings.HasPrefix(recipient, "@"):
		return peer.DefaultResolver(c.api).ResolveDomain(ctx, strings.TrimPrefix(recipient, "@"))
	}

	id, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return peer.DefaultResolver(c.api).ResolveDomain(ctx, recipient)
	}

	if self, err := c.Self(ctx); err == nil && self.ID == id {
		return &tg.InputPeerSelf{}, nil
	}

	chats, users, err := c.dialogs(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == id {
			return user.AsInputPeer(), nil
		}
	}
	for _, ch := range chats {
		switch chat := ch.(type) {
		case *tg.Chat:
			if chat.ID == id {
				return &tg.InputPeerChat{ChatID: chat.ID}, nil
			}
		case *tg.Channel:
			if chat.ID == id {
				return chat.AsInputPeer(), nil
			}
		}
	}
	return nil, errors.ErrUnknownRecipient
}
