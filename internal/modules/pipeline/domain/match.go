package domain

import (
	"time"

	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
)

// Match is a channel post that contained at least one keyword
type Match struct {
	Channel   *channelDomain.Channel `json:"channel"`
	MessageID int64                  `json:"message_id"`
	Keywords  []string               `json:"keywords"`
	Link      string                 `json:"link"`
	Text      string                 `json:"text"`
	Count     int64                  `json:"count"`
	Date      time.Time              `json:"date"`
}
