//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// CredentialSource tells where a session token came from
// ENUM(inline,file,none)
type CredentialSource string

// Outcome is the result of attempting a session token.
// DuplicatedKey means the key was revoked by concurrent use elsewhere and
// must never be retried or persisted again.
// ENUM(authorized,invalid,duplicated_key)
type Outcome string

// State is a session resolver state
// ENUM(try_inline,try_file,interactive,authorized,fatal)
type State string
