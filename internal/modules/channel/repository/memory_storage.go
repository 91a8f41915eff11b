package repository

import (
	"sync"

	"github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/lo"
)

// MemoryStorage implements channel.Repository in memory, keeping the order
// in which channels were saved
type MemoryStorage struct {
	mu       sync.RWMutex
	channels map[int64]*domain.Channel
	order    []int64
}

// NewMemoryStorage creates an empty in-memory channel repository
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{channels: make(map[int64]*domain.Channel)}
}

func (s *MemoryStorage) SaveChannel(channel *domain.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.channels[channel.ID]; !ok {
		s.order = append(s.order, channel.ID)
	}
	stored := *channel
	s.channels[channel.ID] = &stored
	return nil
}

func (s *MemoryStorage) GetChannel(channelID int64) (*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channel, ok := s.channels[channelID]
	if !ok {
		return nil, errors.ErrChannelNotFound
	}
	found := *channel
	return &found, nil
}

func (s *MemoryStorage) GetAllChannels() ([]*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.order, func(id int64, _ int) *domain.Channel {
		channel := *s.channels[id]
		return &channel
	}), nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels = make(map[int64]*domain.Channel)
	s.order = nil
	return nil
}
