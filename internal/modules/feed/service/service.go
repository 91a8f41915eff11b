package service

import (
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/samber/lo"
)

// DefaultCapacity is how many recent matches the feed keeps
const DefaultCapacity = 50

// Service keeps the most recent matches in memory and renders them as a feed
type Service struct {
	mu       sync.RWMutex
	capacity int
	matches  []domain.Match
	started  time.Time
}

// New creates a new match feed holding at most capacity entries
func New(capacity int) *Service {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Service{
		capacity: capacity,
		matches:  make([]domain.Match, 0, capacity),
		started:  time.Now(),
	}
}

// Record appends a match, dropping the oldest one when full
func (s *Service) Record(match domain.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.matches) == s.capacity {
		copy(s.matches, s.matches[1:])
		s.matches = s.matches[:len(s.matches)-1]
	}
	s.matches = append(s.matches, match)
}

// Recent returns the kept matches, newest first
func (s *Service) Recent() []domain.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.Match(nil), s.matches...)
	slices.Reverse(out)
	return out
}

// GenerateFeed builds a feed of recent matches
func (s *Service) GenerateFeed(baseURL string) *feeds.Feed {
	matches := s.Recent()

	feed := &feeds.Feed{
		Title:       "channel-watch matches",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed", baseURL)},
		Description: "Channel posts that matched the configured keywords",
		Created:     s.started,
		Updated:     s.started,
	}
	if len(matches) > 0 {
		feed.Updated = matches[0].Date
	}

	feed.Items = lo.Map(matches, func(m domain.Match, _ int) *feeds.Item {
		return matchToFeedItem(m)
	})
	return feed
}

// RSS renders the feed as RSS 2.0
func (s *Service) RSS(baseURL string) (string, error) {
	return s.GenerateFeed(baseURL).ToRss()
}

func matchToFeedItem(m domain.Match) *feeds.Item {
	keywords := strings.Join(m.Keywords, ", ")

	content := fmt.Sprintf("<p><strong>Keywords:</strong> %s</p><p>%s</p>",
		html.EscapeString(keywords),
		strings.ReplaceAll(html.EscapeString(m.Text), "\n", "<br>"),
	)

	return &feeds.Item{
		Title:       fmt.Sprintf("%s: %s", m.Channel.DisplayName(), keywords),
		Link:        &feeds.Link{Href: m.Link},
		Description: truncate(m.Text, 200),
		Content:     content,
		Author:      &feeds.Author{Name: m.Channel.DisplayName()},
		Created:     m.Date,
		Id:          fmt.Sprintf("%d-%d", m.Channel.ID, m.MessageID),
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
