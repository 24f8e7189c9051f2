// Package store provides durable client-side session state.
package store

import (
	"context"
)

// Keys of the durable session state. Each write is a single-key overwrite
// carrying its own complete value, so out-of-order completions cannot
// corrupt the stored state.
const (
	KeyUserID         = "userId"
	KeyUserScore      = "userScore"
	KeyConversationID = "conversationId"
)

// Repository defines the interface for persisting session state across
// process restarts. An empty string (or zero score) means "not stored".
type Repository interface {
	// LoadIdentity returns the stored user identifier, or "" if none.
	LoadIdentity(ctx context.Context) (string, error)

	// SaveIdentity overwrites the stored user identifier.
	SaveIdentity(ctx context.Context, id string) error

	// LoadScore returns the stored score, or 0 if none.
	LoadScore(ctx context.Context) (int, error)

	// SaveScore overwrites the stored score.
	SaveScore(ctx context.Context, value int) error

	// LoadConversationID returns the stored conversation id, or "" if none.
	LoadConversationID(ctx context.Context) (string, error)

	// SaveConversationID overwrites the stored conversation id.
	SaveConversationID(ctx context.Context, id string) error

	// ClearConversationID removes the stored conversation id.
	ClearConversationID(ctx context.Context) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}
