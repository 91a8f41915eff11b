package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Credential is one session token candidate, immutable once read
type Credential struct {
	Source CredentialSource
	Token  []byte
}

// Empty reports whether there is no token to attempt
func (c Credential) Empty() bool {
	return len(c.Token) == 0
}

// Fingerprint identifies the token without keeping it in logs or maps
func (c Credential) Fingerprint() string {
	sum := sha256.Sum256(c.Token)
	return hex.EncodeToString(sum[:8])
}

// Transition records one resolver step
type Transition struct {
	From    State
	To      State
	Outcome Outcome
}
