// Package kps implements the keyed persistent store: a client-side cache
// cell that binds one semantic key, optionally namespaced by an owner id,
// to one JSON-serializable value. The value is durable across restarts and
// converges across independent copies (other processes, other windows)
// through change events on the underlying slot.
package kps

import "context"

// Event describes one external change to a storage slot.
type Event struct {
	Key      string
	OldValue string
	NewValue string
	Removed  bool
}

// SlotStorage is the durable slot API: one string value per key, with
// synchronous get/set/remove semantics. Implementations must derive nothing
// from the key; the same key always addresses the same slot.
type SlotStorage interface {
	// Get returns the stored value and whether the slot exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the slot value atomically.
	Set(ctx context.Context, key string, value string) error
	// Remove deletes the slot. Removing an absent slot is not an error.
	Remove(ctx context.Context, key string) error
}

// Watcher delivers change events made to a key by other writers. The channel
// is closed when ctx is cancelled. Delivery is best-effort and asynchronous;
// readers converge to the last written value but may observe a staleness
// window.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan Event, error)
}
