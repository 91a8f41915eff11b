package service

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-watch/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

var numericIdentifier = regexp.MustCompile(`^-?\d+$`)

// Resolver looks channels up on the network
type Resolver interface {
	ResolveUsername(ctx context.Context, username string) (domain.Channel, error)
	ResolveChannelID(ctx context.Context, id int64) (domain.Channel, error)
}

// Service maps configured channel identifiers to resolved channels
type Service struct {
	repo channelRepo.Repository
	log  *slog.Logger
}

// New creates a new channel registry
func New(repo channelRepo.Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// DecodeIdentifier classifies a configured identifier. Numeric identifiers
// lose a leading "-100" container marker, or else a bare "-"; anything
// else is a public username without its "@".
func DecodeIdentifier(identifier string) (id int64, username string, numeric bool) {
	identifier = strings.TrimSpace(identifier)
	if !numericIdentifier.MatchString(identifier) {
		return 0, strings.TrimPrefix(identifier, "@"), false
	}

	digits := identifier
	switch {
	case strings.HasPrefix(digits, "-100"):
		digits = strings.TrimPrefix(digits, "-100")
	case strings.HasPrefix(digits, "-"):
		digits = strings.TrimPrefix(digits, "-")
	}

	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, identifier, false
	}
	return id, "", true
}

// ResolveOne resolves a single identifier via the transport
func (s *Service) ResolveOne(ctx context.Context, resolver Resolver, identifier string) (*domain.Channel, error) {
	id, username, numeric := DecodeIdentifier(identifier)

	var (
		channel domain.Channel
		err     error
	)
	if numeric {
		channel, err = resolver.ResolveChannelID(ctx, id)
	} else {
		channel, err = resolver.ResolveUsername(ctx, username)
	}
	if err != nil {
		return nil, oops.With("identifier", identifier, "numeric", numeric).Wrap(err)
	}

	channel.Identifier = identifier
	return &channel, nil
}

// Resolve replaces the registry contents with the resolved watch list.
// A failing identifier is logged and skipped; only an empty result is an
// error.
func (s *Service) Resolve(ctx context.Context, resolver Resolver, identifiers []string) ([]*domain.Channel, error) {
	if err := s.repo.Clear(); err != nil {
		return nil, oops.With("context", "failed to clear channel registry").Wrap(err)
	}

	s.log.Debug("Resolving channel entities...", "count", len(identifiers))

	for _, identifier := range lo.Uniq(identifiers) {
		s.log.Debug("Attempting to resolve channel", "identifier", identifier)

		channel, err := s.ResolveOne(ctx, resolver, identifier)
		if err != nil {
			s.log.Error("Could not find channel", "identifier", identifier, "error", err)
			continue
		}
		if err := s.repo.SaveChannel(channel); err != nil {
			s.log.Error("Failed to store channel", "identifier", identifier, "error", err)
			continue
		}

		s.log.Info("Channel resolved",
			"identifier", identifier,
			"title", channel.Title,
			"id", channel.ID,
			"username", channel.Username,
			"participants", channel.Participants,
		)
	}

	channels, err := s.repo.GetAllChannels()
	if err != nil {
		return nil, oops.With("context", "failed to list channels").Wrap(err)
	}
	if len(channels) == 0 {
		return nil, errors.ErrNoChannels
	}

	s.log.Info("Channels resolved", "resolved", len(channels), "configured", len(identifiers))
	return channels, nil
}

// GetChannel retrieves a watched channel by its numeric id
func (s *Service) GetChannel(channelID int64) (*domain.Channel, error) {
	return s.repo.GetChannel(channelID)
}

// GetAllChannels retrieves all watched channels
func (s *Service) GetAllChannels() ([]*domain.Channel, error) {
	return s.repo.GetAllChannels()
}

// IDs returns the numeric ids of all watched channels
func (s *Service) IDs() []int64 {
	channels, err := s.repo.GetAllChannels()
	if err != nil {
		return nil
	}
	return lo.Map(channels, func(ch *domain.Channel, _ int) int64 { return ch.ID })
}
