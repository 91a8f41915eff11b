package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"runtime"
	"strings"
	"time"

	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	keywordService "github.com/reshetovitsme/channel-watch/internal/modules/keyword/service"
	mediaService "github.com/reshetovitsme/channel-watch/internal/modules/media/service"
	messageDomain "github.com/reshetovitsme/channel-watch/internal/modules/message/domain"
	notificationDomain "github.com/reshetovitsme/channel-watch/internal/modules/notification/domain"
	"github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
)

// Registry looks up watched channels
type Registry interface {
	GetChannel(channelID int64) (*channelDomain.Channel, error)
}

// Collector gathers the photos of a matched post
type Collector interface {
	Collect(ctx context.Context, history mediaService.History, channel *channelDomain.Channel, event messageDomain.Event) ([][]byte, error)
}

// Notifier delivers match notifications
type Notifier interface {
	Deliver(ctx context.Context, payload notificationDomain.Payload) notificationDomain.Outcome
	SendText(ctx context.Context, caption string) notificationDomain.Outcome
}

// Recorder keeps recent matches
type Recorder interface {
	Record(match domain.Match)
}

// Service runs every incoming event through matching and notification
type Service struct {
	matcher  *keywordService.Service
	registry Registry
	media    Collector
	notifier Notifier
	feed     Recorder
	stats    *domain.RunStats
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
	caption  func(domain.Match) string
}

// New creates a new event pipeline
func New(
	matcher *keywordService.Service,
	registry Registry,
	media Collector,
	notifier Notifier,
	feed Recorder,
	stats *domain.RunStats,
	m *metrics.Metrics,
	log *slog.Logger,
) *Service {
	return &Service{
		matcher:  matcher,
		registry: registry,
		media:    media,
		notifier: notifier,
		feed:     feed,
		stats:    stats,
		metrics:  m,
		log:      log,
		now:      time.Now,
		caption:  BuildCaption,
	}
}

// Stats returns the counters of this run
func (s *Service) Stats() *domain.RunStats {
	return s.stats
}

// Handle processes one event to completion. It never panics and never
// returns an error: failures end in a plain-text notification or a log.
func (s *Service) Handle(ctx context.Context, history mediaService.History, event messageDomain.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic while handling message", "channel_id", event.ChannelID, "message_id", event.MessageID, "panic", r)
		}
	}()

	s.stats.Observe()
	s.metrics.MessagesObserved.Inc()

	if strings.TrimSpace(event.Text) == "" {
		s.log.Debug("Received event without message text, skipping", "channel_id", event.ChannelID)
		return
	}

	channel, err := s.registry.GetChannel(event.ChannelID)
	if err != nil {
		s.log.Debug("Message from unwatched channel, skipping", "channel_id", event.ChannelID)
		return
	}

	s.log.Debug("New message received",
		"channel", channel.Title,
		"message_id", event.MessageID,
		"preview", event.Preview(100),
	)

	keywords := s.matcher.Match(event.Text)
	if len(keywords) == 0 {
		s.log.Debug("No keywords matched in message", "channel", channel.Title, "message_id", event.MessageID)
		return
	}

	count := s.stats.Match()
	s.metrics.MatchesFound.Inc()

	match := domain.Match{
		Channel:   channel,
		MessageID: event.MessageID,
		Keywords:  keywords,
		Link:      channel.Link(event.MessageID),
		Text:      event.Text,
		Count:     count,
		Date:      event.Date,
	}
	if match.Date.IsZero() {
		match.Date = s.now()
	}

	s.log.Info("Match found!",
		"channel", channel.Title,
		"keywords", keywords,
		"link", match.Link,
		"match_count", count,
		"preview", event.Preview(100),
	)

	if s.feed != nil {
		s.feed.Record(match)
	}
	s.dispatch(ctx, history, channel, event, match)
}

func (s *Service) dispatch(ctx context.Context, history mediaService.History, channel *channelDomain.Channel, event messageDomain.Event, match domain.Match) {
	// replaced by the full caption once it is built
	caption := "<b>Match found!</b>\n\n" + match.Link

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic while sending notification, falling back to text", "message_id", event.MessageID, "panic", r)
			s.notifier.SendText(ctx, caption)
		}
	}()

	caption = s.caption(match)

	photos, err := s.media.Collect(ctx, history, channel, event)
	if err != nil {
		s.log.Error("Failed to gather media, sending text only", "message_id", event.MessageID, "error", err)
		s.notifier.SendText(ctx, caption)
		return
	}

	s.notifier.Deliver(ctx, notificationDomain.Payload{
		Caption: caption,
		Photos:  photos,
	})
}

// BuildCaption renders the HTML notification text for a match
func BuildCaption(match domain.Match) string {
	var b strings.Builder
	b.WriteString("<b>Match found!</b>\n\n")
	fmt.Fprintf(&b, "<b>Channel:</b> %s\n", html.EscapeString(match.Channel.DisplayName()))
	fmt.Fprintf(&b, "<b>Keywords:</b> %s\n\n", html.EscapeString(strings.Join(match.Keywords, ", ")))
	b.WriteString(html.EscapeString(match.Text))
	b.WriteString("\n\n")
	b.WriteString(match.Link)
	return b.String()
}

// ReportStatus logs the run counters every interval until ctx is done
func (s *Service) ReportStatus(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.LogStatus("Status update")
		}
	}
}

// LogStatus writes one status line with the counters and heap usage
func (s *Service) LogStatus(msg string) {
	snap := s.stats.Snapshot(s.now())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s.log.Info(msg,
		"uptime", snap.Uptime.Round(time.Second).String(),
		"messages_observed", snap.Observed,
		"matches_found", snap.Matched,
		"heap_mb", mem.HeapAlloc/1024/1024,
	)
}
