package errors

import "errors"

// Configuration errors abort the process before any network activity.
var (
	ErrMissingAPICredentials = errors.New("API_ID and API_HASH are required (get them from https://my.telegram.org/apps)")
	ErrMissingChannels       = errors.New("CHANNELS_TO_WATCH is required (comma-separated)")
	ErrMissingKeywords       = errors.New("KEYWORDS is required (comma-separated)")
	ErrMissingBotToken       = errors.New("BOT_TOKEN is required in bot notify mode")
	ErrMissingRecipients     = errors.New("TELEGRAM_USER_IDS is required (comma-separated)")
)

// Runtime errors.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicatedKey    = errors.New("session key duplicated")
	ErrAuthorization    = errors.New("authorization failed")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrNoChannels       = errors.New("no valid channels found")
	ErrNotChannel       = errors.New("peer is not a channel")
	ErrNotConnected     = errors.New("transport not connected")
	ErrPromptClosed     = errors.New("prompt closed")
	ErrUnknownRecipient = errors.New("recipient cannot be resolved")
)
