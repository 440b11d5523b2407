// Package persist holds the durable key/value slots that store serialized
// snapshots of the state store, and the background flusher writing to them.
package persist

import (
	"context"
	"errors"
)

// DefaultKey names the slot holding the facility state.
const DefaultKey = "room-storage"

// ErrNotFound is returned by Load when nothing has been saved under the key yet.
var ErrNotFound = errors.New("snapshot not found")

// Slot is a single durable record addressed by a fixed key.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}
