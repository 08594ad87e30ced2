// Package storage defines the persistence interfaces for the
// narrative engine.
//
// The event journal is the durable source of truth; projected
// snapshots are derived and only ever cached. Implementations live in
// subpackages: sqlite backs the journal, bbolt backs the snapshot
// cache.
package storage

import (
	"context"

	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

// Journal persists the append-only event log and the replay base,
// keyed by chat id.
type Journal interface {
	AppendEvents(ctx context.Context, chatID string, events []event.Event) error
	Events(ctx context.Context, chatID string) ([]event.Event, error)
	SetDeleted(ctx context.Context, chatID, eventID string, deleted bool) error
	SaveInitialSnapshot(ctx context.Context, chatID string, base snapshot.Snapshot) error
	InitialSnapshot(ctx context.Context, chatID string) (snapshot.Snapshot, bool, error)
	Close() error
}

// SnapshotCache stores derived projections so replay can skip folding
// the whole journal. Entries are disposable; a miss is never an error.
type SnapshotCache interface {
	Put(ctx context.Context, chatID string, messageID int, projected snapshot.Snapshot) error
	Get(ctx context.Context, chatID string, messageID int) (snapshot.Snapshot, bool, error)
	InvalidateFrom(ctx context.Context, chatID string, messageID int) error
	Close() error
}
