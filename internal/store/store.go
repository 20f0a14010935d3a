// Package store holds the shared game documents. Every implementation must
// make CompareAndSwap atomic with respect to concurrent writers and must
// never expose a partially written state.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
)

var (
	// ErrVersionConflict means another writer committed first.
	ErrVersionConflict = errors.New("turn version conflict")
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
)

// Store is the shared-state collaborator the commit protocol runs against.
type Store interface {
	// Create saves the initial state of a new game.
	Create(ctx context.Context, s *game.GameState) error

	// Load returns the latest committed state.
	Load(ctx context.Context, id uuid.UUID) (*game.GameState, error)

	// CompareAndSwap replaces the state only if the stored TurnVersion still
	// equals expected, and then fans next out to subscribers.
	CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, next *game.GameState) error

	// Subscribe streams every state committed after the call. The channel is
	// closed once ctx is done.
	Subscribe(ctx context.Context, id uuid.UUID) (<-chan *game.GameState, error)

	// Delete drops a game document.
	Delete(ctx context.Context, id uuid.UUID) error
}
