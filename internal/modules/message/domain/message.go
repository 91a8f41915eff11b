package domain

import "time"

// Event represents a new channel post delivered by the transport
type Event struct {
	ChannelID int64     `json:"channel_id"`
	MessageID int64     `json:"message_id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	Photo     *Photo    `json:"photo,omitempty"`
	GroupedID int64     `json:"grouped_id,omitempty"`
}

// Photo references a downloadable photo attached to a message
type Photo struct {
	ID            int64  `json:"id"`
	AccessHash    int64  `json:"access_hash"`
	FileReference []byte `json:"file_reference"`
	SizeType      string `json:"size_type"`
}

// HasPhoto reports whether the message carries a photo
func (e Event) HasPhoto() bool {
	return e.Photo != nil
}

// IsGrouped reports whether the message is part of an album
func (e Event) IsGrouped() bool {
	return e.GroupedID != 0
}

// Preview returns at most n runes of the text, with an ellipsis when cut
func (e Event) Preview(n int) string {
	runes := []rune(e.Text)
	if len(runes) <= n {
		return e.Text
	}
	return string(runes[:n]) + "..."
}
