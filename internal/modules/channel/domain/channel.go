package domain

import "fmt"

// Channel is a resolved watched channel
type Channel struct {
	ID           int64  `json:"id"`
	AccessHash   int64  `json:"access_hash"`
	Title        string `json:"title"`
	Username     string `json:"username"`
	Identifier   string `json:"identifier"`
	Participants int    `json:"participants"`
}

// Link builds the public deep link to a message in the channel. Channels
// without a public username get the private /c/ form.
func (c *Channel) Link(messageID int64) string {
	if c.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", c.Username, messageID)
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", c.ID, messageID)
}

// DisplayName returns the title, or the configured identifier when the
// channel has no title
func (c *Channel) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Identifier
}
