package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/oops"
)

const dialogsPageSize = 100

// ResolveUsername looks a public channel up by its handle
func (c *Client) ResolveUsername(ctx context.Context, username string) (channelDomain.Channel, error) {
	resolved, err := peer.DefaultResolver(c.api).ResolveDomain(ctx, username)
	if err != nil {
		return channelDomain.Channel{}, oops.With("username", username).Wrap(err)
	}

	input, ok := resolved.(*tg.InputPeerChannel)
	if !ok {
		return channelDomain.Channel{}, oops.With("username", username).Wrap(errors.ErrNotChannel)
	}

	res, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: input.ChannelID, AccessHash: input.AccessHash},
	})
	if err != nil {
		return channelDomain.Channel{}, oops.With("username", username, "channel_id", input.ChannelID).Wrap(err)
	}

	var chats []tg.ChatClass
	switch r := res.(type) {
	case *tg.MessagesChats:
		chats = r.Chats
	case *tg.MessagesChatsSlice:
		chats = r.Chats
	}

	for _, chat := range chats {
		if ch, ok := chat.(*tg.Channel); ok {
			channel := toChannel(ch)
			c.remember(channel)
			return channel, nil
		}
	}
	return channelDomain.Channel{}, oops.With("username", username).Wrap(errors.ErrNotChannel)
}

// ResolveChannelID looks a channel up by its native id among the
// account's most recent dialogs
func (c *Client) ResolveChannelID(ctx context.Context, id int64) (channelDomain.Channel, error) {
	chats, _, err := c.dialogs(ctx)
	if err != nil {
		return channelDomain.Channel{}, oops.With("channel_id", id).Wrap(err)
	}

	for _, chat := range chats {
		if ch, ok := chat.(*tg.Channel); ok && ch.ID == id {
			channel := toChannel(ch)
			c.remember(channel)
			return channel, nil
		}
	}
	return channelDomain.Channel{}, oops.With("channel_id", id, "dialogs_scanned", dialogsPageSize).Wrap(errors.ErrChannelNotFound)
}

func (c *Client) dialogs(ctx context.Context) ([]tg.ChatClass, []tg.UserClass, error) {
	res, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      dialogsPageSize,
	})
	if err != nil {
		return nil, nil, err
	}

	switch d := res.(type) {
	case *tg.MessagesDialogs:
		return d.Chats, d.Users, nil
	case *tg.MessagesDialogsSlice:
		return d.Chats, d.Users, nil
	default:
		return nil, nil, nil
	}
}

// remember keeps the access hash of a resolved channel for later calls
func (c *Client) remember(channel channelDomain.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers["channel:"+strconv.FormatInt(channel.ID, 10)] = &tg.InputPeerChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	}
}

func toChannel(ch *tg.Channel) channelDomain.Channel {
	participants, _ := ch.GetParticipantsCount()
	return channelDomain.Channel{
		ID:           ch.ID,
		AccessHash:   ch.AccessHash,
		Title:        ch.Title,
		Username:     strings.TrimPrefix(ch.Username, "@"),
		Participants: participants,
	}
}

func inputChannelPeer(channel *channelDomain.Channel) *tg.InputPeerChannel {
	return &tg.InputPeerChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	}
}
