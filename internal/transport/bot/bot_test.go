package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-watch/internal/modules/channel/repository"
	pipelineDomain "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:abc"

type apiRequest struct {
	Method string
	Fields map[string]string
	Files  []string
}

type fakeBotAPI struct {
	mu       sync.Mutex
	requests []apiRequest
	missing  map[string]bool
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/bot"+testToken+"/")

	req := apiRequest{Method: method, Fields: map[string]string{}}
	if err := r.ParseMultipartForm(10 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			req.Fields[k] = v[0]
		}
		for k := range r.MultipartForm.File {
			req.Files = append(req.Files, k)
		}
	} else if err := r.ParseForm(); err == nil {
		for k, v := range r.Form {
			req.Fields[k] = v[0]
		}
	}

	f.mu.Lock()
	if method != "getMe" {
		f.requests = append(f.requests, req)
	}
	missing := f.missing[req.Fields["chat_id"]]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if missing {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		return
	}

	message := `{"message_id":1,"date":0,"chat":{"id":111,"type":"private"}}`
	switch method {
	case "getMe":
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"watch","username":"watch_bot"}}`))
	case "sendMediaGroup":
		w.Write([]byte(`{"ok":true,"result":[` + message + `]}`))
	default:
		w.Write([]byte(`{"ok":true,"result":` + message + `}`))
	}
}

func (f *fakeBotAPI) last(t *testing.T) apiRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type fixture struct {
	api     *fakeBotAPI
	bot     *tgbot.Bot
	handler *Handler
	sender  *Sender
	stats   *pipelineDomain.RunStats
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := &fakeBotAPI{missing: map[string]bool{"404": true}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		BotToken:   testToken,
		Recipients: []string{"111", "@friend"},
		Keywords:   []string{"balcony"},
	}

	repo := channelRepo.NewMemoryStorage()
	require.NoError(t, repo.SaveChannel(&channelDomain.Channel{ID: 10, Title: "Flats"}))

	stats := pipelineDomain.NewRunStats(time.Now())
	h := NewHandler(cfg, stats, repo, log)

	b, err := New(cfg, h, tgbot.WithServerURL(srv.URL))
	require.NoError(t, err)

	return &fixture{api: api, bot: b, handler: h, sender: NewSender(b, log), stats: stats}
}

func TestSendText(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sender.SendText(context.Background(), "111", "<b>hi</b>"))

	req := f.api.last(t)
	assert.Equal(t, "sendMessage", req.Method)
	assert.Equal(t, "111", req.Fields["chat_id"])
	assert.Equal(t, "<b>hi</b>", req.Fields["text"])
	assert.Equal(t, "HTML", req.Fields["parse_mode"])
}

func TestSendText_ChatNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.sender.SendText(context.Background(), "404", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendPhoto(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sender.SendPhoto(context.Background(), "111", []byte{0xff, 0xd8}, "caption"))

	req := f.api.last(t)
	assert.Equal(t, "sendPhoto", req.Method)
	assert.Equal(t, "caption", req.Fields["caption"])
	assert.Equal(t, "HTML", req.Fields["parse_mode"])
	assert.Equal(t, []string{"photo"}, req.Files)
}

func TestSendAlbum(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sender.SendAlbum(context.Background(), "111", [][]byte{{1}, {2}}, "caption"))

	req := f.api.last(t)
	assert.Equal(t, "sendMediaGroup", req.Method)
	assert.ElementsMatch(t, []string{"photo0", "photo1"}, req.Files)

	var media []map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Fields["media"]), &media))
	require.Len(t, media, 2)
	assert.Equal(t, "attach://photo0", media[0]["media"])
	assert.Equal(t, "caption", media[0]["caption"])
	assert.Equal(t, "HTML", media[0]["parse_mode"])
	assert.Equal(t, "attach://photo1", media[1]["media"])
	assert.Nil(t, media[1]["caption"])
}

func TestChatID(t *testing.T) {
	assert.Equal(t, int64(111), chatID("111"))
	assert.Equal(t, int64(-1001), chatID("-1001"))
	assert.Equal(t, "@friend", chatID("@friend"))
}

func commandUpdate(chatID int64, username, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		Text: text,
		Chat: models.Chat{ID: chatID, Username: username, Type: models.ChatTypePrivate},
	}}
}

func TestHandleStart(t *testing.T) {
	f := newFixture(t)

	f.handler.handleStart(context.Background(), f.bot, commandUpdate(555, "", "/start"))

	req := f.api.last(t)
	assert.Equal(t, "555", req.Fields["chat_id"])
	assert.Contains(t, req.Fields["text"], "Your chat id: 555")
	assert.NotContains(t, req.Fields["text"], "subscribed")
}

func TestHandleStatus(t *testing.T) {
	f := newFixture(t)
	f.stats.Observe()
	f.stats.Match()

	f.handler.handleStatus(context.Background(), f.bot, commandUpdate(777, "Friend", "/status"))

	text := f.api.last(t).Fields["text"]
	assert.Contains(t, text, "Messages observed: 1")
	assert.Contains(t, text, "Matches found: 1")
	assert.Contains(t, text, "Channels (1): Flats")
	assert.Contains(t, text, "Keywords: balcony")
}

func TestHandleStatus_Unauthorized(t *testing.T) {
	f := newFixture(t)

	f.handler.handleStatus(context.Background(), f.bot, commandUpdate(999, "stranger", "/status"))

	assert.Equal(t, "❌ Unauthorized", f.api.last(t).Fields["text"])
}
