package service

import (
	"strings"

	"github.com/samber/lo"
)

// Service matches message text against a fixed keyword list
type Service struct {
	keywords []string
	folded   []string
}

// New creates a matcher. Keywords are trimmed and blank entries dropped;
// the original spelling is kept for reporting.
func New(keywords []string) *Service {
	kept := lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		k = strings.TrimSpace(k)
		return k, k != ""
	})

	return &Service{
		keywords: kept,
		folded:   lo.Map(kept, func(k string, _ int) string { return strings.ToLower(k) }),
	}
}

// Keywords returns the configured keywords
func (s *Service) Keywords() []string {
	return append([]string(nil), s.keywords...)
}

// Match returns the keywords that occur anywhere in text, ignoring case.
// The result follows keyword order; an empty result means no match.
func (s *Service) Match(text string) []string {
	if text == "" {
		return nil
	}

	lowered := strings.ToLower(text)
	var matched []string
	for i, k := range s.folded {
		if strings.Contains(lowered, k) {
			matched = append(matched, s.keywords[i])
		}
	}
	return matched
}
