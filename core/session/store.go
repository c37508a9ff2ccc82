// Package session persists the per-chat conversation state name in an
// external key-value store and serializes handling per chat identifier.
package session

import "context"

// Store maps a chat identifier to its last-known conversation state name.
// Get and Set are independent point operations; callers that read state,
// act, and write the next state must hold the per-chat lock for the whole
// sequence (see Locker).
type Store interface {
	// Get returns the stored state name for the chat, or ("", nil) when no
	// session exists yet.
	Get(ctx context.Context, chatID int64) (string, error)
	// Set stores the state name for the chat. Sessions are never deleted.
	Set(ctx context.Context, chatID int64, state string) error
}
