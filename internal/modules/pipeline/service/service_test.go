package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	keywordService "github.com/reshetovitsme/channel-watch/internal/modules/keyword/service"
	mediaService "github.com/reshetovitsme/channel-watch/internal/modules/media/service"
	messageDomain "github.com/reshetovitsme/channel-watch/internal/modules/message/domain"
	notificationService "github.com/reshetovitsme/channel-watch/internal/modules/notification/service"
	"github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRegistry map[int64]*channelDomain.Channel

func (r mapRegistry) GetChannel(id int64) (*channelDomain.Channel, error) {
	if ch, ok := r[id]; ok {
		return ch, nil
	}
	return nil, errors.ErrChannelNotFound
}

type fakeHistory struct {
	recent  []messageDomain.Event
	failAll bool
	panics  bool
}

func (h *fakeHistory) RecentMessages(context.Context, *channelDomain.Channel, int) ([]messageDomain.Event, error) {
	if h.failAll {
		return nil, fmt.Errorf("FLOOD_WAIT_5")
	}
	return h.recent, nil
}

func (h *fakeHistory) DownloadPhoto(_ context.Context, photo *messageDomain.Photo) ([]byte, error) {
	if h.panics {
		panic("unexpected photo size")
	}
	if h.failAll {
		return nil, fmt.Errorf("FLOOD_WAIT_5")
	}
	return []byte{byte(photo.ID)}, nil
}

type sent struct {
	method string
	to     string
	text   string
	photos int
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingSender) add(s sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
	return nil
}

func (r *recordingSender) SendText(_ context.Context, to, html string) error {
	return r.add(sent{method: "text", to: to, text: html})
}

func (r *recordingSender) SendPhoto(_ context.Context, to string, _ []byte, caption string) error {
	return r.add(sent{method: "photo", to: to, text: caption, photos: 1})
}

func (r *recordingSender) SendAlbum(_ context.Context, to string, photos [][]byte, caption string) error {
	return r.add(sent{method: "album", to: to, text: caption, photos: len(photos)})
}

type memoryFeed struct {
	matches []domain.Match
}

func (f *memoryFeed) Record(m domain.Match) { f.matches = append(f.matches, m) }

type fixture struct {
	pipeline *Service
	sender   *recordingSender
	feed     *memoryFeed
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	sender := &recordingSender{}
	feed := &memoryFeed{}

	registry := mapRegistry{
		10: {ID: 10, Title: "Flats", Username: "flats"},
		20: {ID: 20, Title: "Private <rent>", Identifier: "-10020"},
	}

	p := New(
		keywordService.New([]string{"без комиссии", "Balcony"}),
		registry,
		mediaService.New(10, log),
		notificationService.New(sender, []string{"111", "222"}, m, log),
		feed,
		domain.NewRunStats(time.Now()),
		m,
		log,
	)
	return &fixture{pipeline: p, sender: sender, feed: feed, metrics: m}
}

func TestHandle_TextMatch(t *testing.T) {
	f := newFixture(t)

	f.pipeline.Handle(context.Background(), &fakeHistory{}, messageDomain.Event{
		ChannelID: 10,
		MessageID: 55,
		Text:      "Квартира БЕЗ КОМИССИИ, центр",
	})

	require.Len(t, f.sender.sent, 2)
	want := "<b>Match found!</b>\n\n<b>Channel:</b> Flats\n<b>Keywords:</b> без комиссии\n\nКвартира БЕЗ КОМИССИИ, центр\n\nhttps://t.me/flats/55"
	for _, s := range f.sender.sent {
		assert.Equal(t, "text", s.method)
		assert.Equal(t, want, s.text)
	}

	snap := f.pipeline.Stats().Snapshot(time.Now())
	assert.Equal(t, int64(1), snap.Observed)
	assert.Equal(t, int64(1), snap.Matched)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MatchesFound))

	require.Len(t, f.feed.matches, 1)
	assert.Equal(t, "https://t.me/flats/55", f.feed.matches[0].Link)
	assert.Equal(t, int64(1), f.feed.matches[0].Count)
	assert.False(t, f.feed.matches[0].Date.IsZero())
}

func TestHandle_NoMatch(t *testing.T) {
	f := newFixture(t)

	f.pipeline.Handle(context.Background(), &fakeHistory{}, messageDomain.Event{ChannelID: 10, MessageID: 1, Text: "studio for rent"})

	assert.Empty(t, f.sender.sent)
	snap := f.pipeline.Stats().Snapshot(time.Now())
	assert.Equal(t, int64(1), snap.Observed)
	assert.Zero(t, snap.Matched)
}

func TestHandle_NoMatchIsLoggedAtDebug(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	f.pipeline.log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f.pipeline.Handle(context.Background(), &fakeHistory{}, messageDomain.Event{ChannelID: 10, MessageID: 7, Text: "studio for rent"})

	assert.Contains(t, buf.String(), "No keywords matched in message")
	assert.Contains(t, buf.String(), "message_id=7")
}

func TestHandle_CaptionPanicDegradesToText(t *testing.T) {
	f := newFixture(t)
	f.pipeline.caption = func(domain.Match) string { panic("broken title") }

	assert.NotPanics(t, func() {
		f.pipeline.Handle(context.Background(), &fakeHistory{}, messageDomain.Event{
			ChannelID: 10,
			MessageID: 55,
			Photo:     &messageDomain.Photo{ID: 1},
			Text:      "balcony",
		})
	})

	require.Len(t, f.sender.sent, 2)
	for _, s := range f.sender.sent {
		assert.Equal(t, "text", s.method)
		assert.Equal(t, "<b>Match found!</b>\n\nhttps://t.me/flats/55", s.text)
	}
}

func TestHandle_SkipsEmptyAndUnwatched(t *testing.T) {
	f := newFixture(t)

	f.pipeline.Handle(context.Background(), &fakeHistory{}, messageDomain.Event{ChannelID: 10, MessageID: 1, Text: "   "})
	f.pipeline.Handle(context.Background(), &fakeHistory{}, messageDomain.Event{ChannelID: 99, MessageID: 2, Text: "balcony"})

	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.feed.matches)
	snap := f.pipeline.Stats().Snapshot(time.Now())
	assert.Equal(t, int64(2), snap.Observed)
	assert.Zero(t, snap.Matched)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.MessagesObserved))
}

func TestHandle_AlbumMatch(t *testing.T) {
	f := newFixture(t)
	history := &fakeHistory{recent: []messageDomain.Event{
		{MessageID: 57, GroupedID: 5, Photo: &messageDomain.Photo{ID: 3}},
		{MessageID: 56, GroupedID: 5, Photo: &messageDomain.Photo{ID: 2}},
		{MessageID: 55, GroupedID: 5, Photo: &messageDomain.Photo{ID: 1}, Text: "balcony view"},
	}}

	f.pipeline.Handle(context.Background(), history, messageDomain.Event{
		ChannelID: 10,
		MessageID: 55,
		GroupedID: 5,
		Photo:     &messageDomain.Photo{ID: 1},
		Text:      "balcony view",
	})

	require.Len(t, f.sender.sent, 2)
	for _, s := range f.sender.sent {
		assert.Equal(t, "album", s.method)
		assert.Equal(t, 3, s.photos)
		assert.Contains(t, s.text, "<b>Keywords:</b> Balcony")
	}
}

func TestHandle_MediaFailureDegradesToText(t *testing.T) {
	f := newFixture(t)

	f.pipeline.Handle(context.Background(), &fakeHistory{failAll: true}, messageDomain.Event{
		ChannelID: 10,
		MessageID: 55,
		Photo:     &messageDomain.Photo{ID: 1},
		Text:      "balcony",
	})

	require.Len(t, f.sender.sent, 2)
	assert.Equal(t, "text", f.sender.sent[0].method)
}

func TestHandle_PanicDegradesToText(t *testing.T) {
	f := newFixture(t)

	assert.NotPanics(t, func() {
		f.pipeline.Handle(context.Background(), &fakeHistory{panics: true}, messageDomain.Event{
			ChannelID: 10,
			MessageID: 55,
			Photo:     &messageDomain.Photo{ID: 1},
			Text:      "balcony",
		})
	})

	methods := make([]string, 0, len(f.sender.sent))
	for _, s := range f.sender.sent {
		methods = append(methods, s.method)
	}
	assert.Equal(t, []string{"text", "text"}, methods)
}

func TestBuildCaption_EscapesAndUsesPrivateLink(t *testing.T) {
	channel := &channelDomain.Channel{ID: 20, Title: "Private <rent>"}
	caption := BuildCaption(domain.Match{
		Channel:  channel,
		Keywords: []string{"a&b"},
		Text:     "1 < 2",
		Link:     channel.Link(7),
	})

	assert.Equal(t, "<b>Match found!</b>\n\n<b>Channel:</b> Private &lt;rent&gt;\n<b>Keywords:</b> a&amp;b\n\n1 &lt; 2\n\nhttps://t.me/c/20/7", caption)
}

func TestReportStatus_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.pipeline.ReportStatus(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("status reporter did not stop")
	}
}

func TestLogStatus(t *testing.T) {
	var buf strings.Builder
	f := newFixture(t)
	f.pipeline.log = slog.New(slog.NewTextHandler(&buf, nil))
	f.pipeline.stats.Observe()

	f.pipeline.LogStatus("Status update")

	assert.Contains(t, buf.String(), "messages_observed=1")
	assert.Contains(t, buf.String(), "matches_found=0")
	assert.Contains(t, buf.String(), "heap_mb=")
}

var _ Notifier = (*notificationService.Service)(nil)
