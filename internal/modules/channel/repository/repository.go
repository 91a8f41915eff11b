package repository

import (
	"github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
)

// Repository defines the interface for resolved channel lookup.
// Handles are created once per run and never mutated.
type Repository interface {
	SaveChannel(channel *domain.Channel) error
	GetChannel(channelID int64) (*domain.Channel, error)
	GetAllChannels() ([]*domain.Channel, error)
	Clear() error
}
