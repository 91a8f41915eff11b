package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/channel-watch/internal/modules/message/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultLookback is how many recent channel messages are scanned for
// album siblings
const DefaultLookback = 10

// History reads recent channel messages and their photos
type History interface {
	RecentMessages(ctx context.Context, channel *channelDomain.Channel, limit int) ([]messageDomain.Event, error)
	DownloadPhoto(ctx context.Context, photo *messageDomain.Photo) ([]byte, error)
}

// Service gathers the photos that belong to a matched post
type Service struct {
	lookback int
	log      *slog.Logger
}

// New creates a media aggregator scanning lookback recent messages
func New(lookback int, log *slog.Logger) *Service {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Service{
		lookback: lookback,
		log:      log,
	}
}

// Collect returns the photo payloads for event. Albums are gathered from
// the recent-message window; a single ungrouped photo is downloaded
// directly; text posts yield nothing.
func (s *Service) Collect(ctx context.Context, history History, channel *channelDomain.Channel, event messageDomain.Event) ([][]byte, error) {
	switch {
	case event.IsGrouped():
		return s.album(ctx, history, channel, event)
	case event.HasPhoto():
		photo, err := history.DownloadPhoto(ctx, event.Photo)
		if err != nil {
			return nil, oops.With("channel_id", channel.ID, "message_id", event.MessageID, "context", "failed to download photo").Wrap(err)
		}
		if len(photo) == 0 {
			return nil, nil
		}
		return [][]byte{photo}, nil
	default:
		return nil, nil
	}
}

func (s *Service) album(ctx context.Context, history History, channel *channelDomain.Channel, event messageDomain.Event) ([][]byte, error) {
	recent, err := history.RecentMessages(ctx, channel, s.lookback)
	if err != nil {
		return nil, oops.With("channel_id", channel.ID, "grouped_id", event.GroupedID, "context", "failed to fetch album messages").Wrap(err)
	}

	siblings := lo.Filter(recent, func(m messageDomain.Event, _ int) bool {
		return m.GroupedID == event.GroupedID && m.HasPhoto()
	})
	slices.SortFunc(siblings, func(a, b messageDomain.Event) int {
		return cmp.Compare(a.MessageID, b.MessageID)
	})

	photos := make([][]byte, 0, len(siblings))
	for _, sibling := range siblings {
		data, err := history.DownloadPhoto(ctx, sibling.Photo)
		if err != nil {
			s.log.Warn("Failed to download album photo, skipping",
				"channel_id", channel.ID,
				"message_id", sibling.MessageID,
				"error", err,
			)
			continue
		}
		if len(data) > 0 {
			photos = append(photos, data)
		}
	}

	s.log.Debug("Album photos collected",
		"channel_id", channel.ID,
		"grouped_id", event.GroupedID,
		"siblings", len(siblings),
		"downloaded", len(photos),
	)
	return photos, nil
}
