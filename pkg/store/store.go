// Package store persists board snapshots under caller-chosen keys.
//
// Backends: files on disk for CLI usage, Redis and MongoDB for shared
// deployments, and a null store for callers that opt out of persistence.
// Every backend validates keys and snapshots the same way, so a board saved
// through one loads through any other.
package store

import (
	"context"

	"github.com/kciter/pegboard-sub000/pkg/board"
)

// Store persists snapshots by key.
type Store interface {
	// Save writes a snapshot under the key, replacing any previous value.
	Save(ctx context.Context, key string, snap board.Snapshot) error

	// Load reads the snapshot under the key. The bool is false when the key
	// does not exist.
	Load(ctx context.Context, key string) (board.Snapshot, bool, error)

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// NullStore discards saves and never finds anything. It backs boards that
// run without persistence.
type NullStore struct{}

// NewNullStore creates a store that persists nothing.
func NewNullStore() *NullStore { return &NullStore{} }

func (*NullStore) Save(context.Context, string, board.Snapshot) error { return nil }

func (*NullStore) Load(context.Context, string) (board.Snapshot, bool, error) {
	return board.Snapshot{}, false, nil
}

func (*NullStore) Delete(context.Context, string) error { return nil }

func (*NullStore) List(context.Context) ([]string, error) { return nil, nil }

func (*NullStore) Close() error { return nil }

var _ Store = (*NullStore)(nil)
