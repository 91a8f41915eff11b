package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-watch/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	byName map[string]domain.Channel
	byID   map[int64]domain.Channel
	calls  []string
}

func (f *fakeResolver) ResolveUsername(_ context.Context, username string) (domain.Channel, error) {
	f.calls = append(f.calls, "name:"+username)
	ch, ok := f.byName[username]
	if !ok {
		return domain.Channel{}, fmt.Errorf("USERNAME_NOT_OCCUPIED")
	}
	return ch, nil
}

func (f *fakeResolver) ResolveChannelID(_ context.Context, id int64) (domain.Channel, error) {
	f.calls = append(f.calls, fmt.Sprintf("id:%d", id))
	ch, ok := f.byID[id]
	if !ok {
		return domain.Channel{}, errors.ErrChannelNotFound
	}
	return ch, nil
}

func newTestService() *Service {
	return New(channelRepo.NewMemoryStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDecodeIdentifier(t *testing.T) {
	tests := []struct {
		in          string
		wantID      int64
		wantName    string
		wantNumeric bool
	}{
		{"-100123", 123, "", true},
		{"-123", 123, "", true},
		{"123", 123, "", true},
		{"-1001234567890", 1234567890, "", true},
		{"100123", 100123, "", true},
		{"flats_kyiv", 0, "flats_kyiv", false},
		{"@flats_kyiv", 0, "flats_kyiv", false},
		{"12ab", 0, "12ab", false},
		{"-", 0, "-", false},
		{" 42 ", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, name, numeric := DecodeIdentifier(tt.in)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantNumeric, numeric)
		})
	}
}

func TestResolve_SkipsFailures(t *testing.T) {
	resolver := &fakeResolver{
		byName: map[string]domain.Channel{"flats": {ID: 10, Title: "Flats", Username: "flats"}},
		byID:   map[int64]domain.Channel{123: {ID: 123, Title: "Private"}},
	}
	s := newTestService()

	channels, err := s.Resolve(context.Background(), resolver, []string{"flats", "missing", "-100123", "-999"})
	require.NoError(t, err)
	require.Len(t, channels, 2)

	assert.Equal(t, "flats", channels[0].Identifier)
	assert.Equal(t, "-100123", channels[1].Identifier)
	assert.Equal(t, []int64{10, 123}, s.IDs())
	assert.Equal(t, []string{"name:flats", "name:missing", "id:123", "id:999"}, resolver.calls)

	got, err := s.GetChannel(123)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)

	_, err = s.GetChannel(999)
	assert.ErrorIs(t, err, errors.ErrChannelNotFound)
}

func TestResolve_EmptyResultIsError(t *testing.T) {
	s := newTestService()
	_, err := s.Resolve(context.Background(), &fakeResolver{}, []string{"nope", "-1001"})
	assert.ErrorIs(t, err, errors.ErrNoChannels)
}

func TestResolve_ReplacesPreviousRun(t *testing.T) {
	resolver := &fakeResolver{byName: map[string]domain.Channel{
		"a": {ID: 1, Title: "A"},
		"b": {ID: 2, Title: "B"},
	}}
	s := newTestService()

	_, err := s.Resolve(context.Background(), resolver, []string{"a"})
	require.NoError(t, err)
	_, err = s.Resolve(context.Background(), resolver, []string{"b"})
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, s.IDs())
}

func TestResolveOne_Idempotent(t *testing.T) {
	resolver := &fakeResolver{byName: map[string]domain.Channel{"flats": {ID: 10, Title: "Flats"}}}
	s := newTestService()

	first, err := s.ResolveOne(context.Background(), resolver, "flats")
	require.NoError(t, err)
	second, err := s.ResolveOne(context.Background(), resolver, "flats")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChannelLink(t *testing.T) {
	public := &domain.Channel{ID: 10, Username: "flats"}
	private := &domain.Channel{ID: 123, Identifier: "-100123"}

	assert.Equal(t, "https://t.me/flats/55", public.Link(55))
	assert.Equal(t, "https://t.me/c/123/55", private.Link(55))
	assert.Equal(t, "-100123", private.DisplayName())
}
