package di

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/reshetovitsme/channel-watch/internal/app"
	notificationService "github.com/reshetovitsme/channel-watch/internal/modules/notification/service"
	sessionService "github.com/reshetovitsme/channel-watch/internal/modules/session/service"
	"github.com/reshetovitsme/channel-watch/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	for _, key := range []string{"API_ID", "API_HASH", "NOTIFY_MODE", "BOT_TOKEN", "SESSION_STRING", "HTTP_PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSetup_UserModeWiring(t *testing.T) {
	path := writeConfig(t, `
api_id: 1
api_hash: hash
notify_mode: user
telegram_user_ids: [me]
channels_to_watch: [flats]
keywords: [balcony]
session_string: "eyJWZXJzaW9uIjoxfQ=="
`)

	injector, err := Setup(Options{ConfigPath: path, Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard})
	require.NoError(t, err)

	sender, err := do.Invoke[notificationService.Sender](injector)
	require.NoError(t, err)
	assert.IsType(t, &telegram.Sender{}, sender)

	_, err = do.Invoke[*sessionService.Service[*telegram.Client]](injector)
	require.NoError(t, err)

	_, err = do.Invoke[*app.App[*telegram.Client]](injector)
	require.NoError(t, err)
}

func TestSetup_InvalidSessionString(t *testing.T) {
	path := writeConfig(t, `
api_id: 1
api_hash: hash
session_string: "%%%"
`)

	injector, err := Setup(Options{ConfigPath: path, Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard})
	require.NoError(t, err)

	_, err = do.Invoke[*sessionService.Service[*telegram.Client]](injector)
	assert.Error(t, err)
}

func TestSessionStringRoundTrip(t *testing.T) {
	blob := []byte(`{"Version":1,"Data":{"DC":2}}`)

	got, err := DecodeSessionString(" " + EncodeSessionString(blob) + "\n")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(blob, got))

	empty, err := DecodeSessionString("")
	require.NoError(t, err)
	assert.Nil(t, empty)
}
