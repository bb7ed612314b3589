package kps

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lifedash/internal/logging"
)

const keySeparator = "_"

// EffectiveKey derives the storage address for a base key and an optional
// owner id. It is a pure function: two callers with the same inputs always
// address the same slot.
func EffectiveKey(baseKey, ownerID string) string {
	if ownerID != "" {
		return ownerID + keySeparator + baseKey
	}
	return baseKey
}

// Cell binds one (baseKey, ownerID) identity to one JSON-serializable value.
//
// A cell materializes lazily: the first open of an empty slot writes the
// initial value so other copies see a slot, not an absence. A corrupt slot is
// healed back to the initial value. Durable failures are logged and
// non-fatal; the in-memory value keeps working at the cost of durability.
//
// Owner-scoped cells (OpenOwned) reset to the initial value whenever the
// owner becomes empty, and in that state never read or write durable
// storage, so a logout can never leak owner data into the shared base key.
type Cell[T any] struct {
	storage     SlotStorage
	watcher     Watcher
	logger      logging.Logger
	baseKey     string
	ownerScoped bool
	initialRaw  []byte

	mu          sync.Mutex
	ownerID     string
	current     T
	watchCancel context.CancelFunc
}

// Open opens a cell for a non-namespaced key.
func Open[T any](ctx context.Context, storage SlotStorage, watcher Watcher, logger logging.Logger, baseKey string, initial T) (*Cell[T], error) {
	return open(ctx, storage, watcher, logger, baseKey, initial, "", false)
}

// OpenOwned opens an owner-scoped cell. An empty ownerID is the logged-out
// state: the cell holds the initial value and ignores durable storage until
// SetOwner installs an owner.
func OpenOwned[T any](ctx context.Context, storage SlotStorage, watcher Watcher, logger logging.Logger, baseKey string, initial T, ownerID string) (*Cell[T], error) {
	return open(ctx, storage, watcher, logger, baseKey, initial, ownerID, true)
}

func open[T any](ctx context.Context, storage SlotStorage, watcher Watcher, logger logging.Logger, baseKey string, initial T, ownerID string, ownerScoped bool) (*Cell[T], error) {
	raw, err := json.Marshal(initial)
	if err != nil {
		return nil, fmt.Errorf("initial value is not serializable: %w", err)
	}
	c := &Cell[T]{
		storage:     storage,
		watcher:     watcher,
		logger:      logger,
		baseKey:     baseKey,
		ownerScoped: ownerScoped,
		initialRaw:  raw,
		ownerID:     ownerID,
	}
	c.mu.Lock()
	c.load(ctx)
	c.rewatch()
	c.mu.Unlock()
	return c, nil
}

// Key returns the current effective storage key.
func (c *Cell[T]) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveKey()
}

// Get returns the current value. Callers must not mutate shared parts of the
// result; use Update for read-modify-write.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Write replaces the value and persists it to the effective key. For an
// owner-scoped cell with no current owner the call is a no-op.
func (c *Cell[T]) Write(ctx context.Context, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(ctx, value)
}

// Update applies fn to the current value under the cell lock, so rapid
// sequential updates within one process never lose writes.
func (c *Cell[T]) Update(ctx context.Context, fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ownerScoped && c.ownerID == "" {
		return
	}
	c.apply(ctx, fn(c.current))
}

// SetOwner switches the cell to a different owner (or to the logged-out
// state when ownerID is empty) and reloads from the new effective key. The
// previous owner's value is never carried over.
func (c *Cell[T]) SetOwner(ctx context.Context, ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ownerScoped || ownerID == c.ownerID {
		return
	}
	c.ownerID = ownerID
	c.load(ctx)
	c.rewatch()
}

// Close cancels the change subscription. The durable slot is left intact.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
}

func (c *Cell[T]) effectiveKey() string {
	return EffectiveKey(c.baseKey, c.ownerID)
}

// apply installs value and persists it. The owner id is re-read here, at the
// moment of the durable write, so a write issued in the gap between logout
// and cell teardown cannot resurrect owner data under the shared key.
func (c *Cell[T]) apply(ctx context.Context, value T) {
	if c.ownerScoped && c.ownerID == "" {
		return
	}
	c.current = value
	key := c.effectiveKey()
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Error(ctx, "value not serializable, kept in memory only", "key", key, "error", err)
		return
	}
	if err := c.storage.Set(ctx, key, string(raw)); err != nil {
		c.logger.Error(ctx, "slot write failed, kept in memory only", "key", key, "error", err)
	}
}

// load refreshes the in-memory value from the current effective key.
// Called with c.mu held.
func (c *Cell[T]) load(ctx context.Context) {
	if c.ownerScoped && c.ownerID == "" {
		c.current = c.freshInitial(ctx)
		return
	}
	key := c.effectiveKey()
	raw, ok, err := c.storage.Get(ctx, key)
	if err != nil {
		c.logger.Error(ctx, "slot read failed", "key", key, "error", err)
		c.current = c.freshInitial(ctx)
		return
	}
	if !ok {
		c.current = c.freshInitial(ctx)
		c.persistInitial(ctx, key)
		return
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		c.logger.Warn(ctx, "corrupt slot value, resetting", "key", key, "error", err)
		c.current = c.freshInitial(ctx)
		c.persistInitial(ctx, key)
		return
	}
	c.current = v
}

// freshInitial decodes a private copy of the initial value so callers can
// never alias the template through a returned slice or map.
func (c *Cell[T]) freshInitial(ctx context.Context) T {
	var v T
	if err := json.Unmarshal(c.initialRaw, &v); err != nil {
		c.logger.Error(ctx, "initial value decode failed", "key", c.baseKey, "error", err)
	}
	return v
}

func (c *Cell[T]) persistInitial(ctx context.Context, key string) {
	if err := c.storage.Set(ctx, key, string(c.initialRaw)); err != nil {
		c.logger.Error(ctx, "slot materialization failed", "key", key, "error", err)
	}
}

// rewatch re-subscribes the cell to external changes on the current
// effective key. Called with c.mu held.
func (c *Cell[T]) rewatch() {
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
	if c.watcher == nil {
		return
	}
	if c.ownerScoped && c.ownerID == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	key := c.effectiveKey()
	ch, err := c.watcher.Watch(ctx, key)
	if err != nil {
		c.logger.Error(ctx, "watch subscription failed", "key", key, "error", err)
		cancel()
		return
	}
	c.watchCancel = cancel
	go c.mirror(ctx, key, ch)
}

// mirror adopts external changes so the cell stays a live copy of the slot,
// not a one-shot loader. A removed slot resets to the initial value, as does
// an unparsable one.
func (c *Cell[T]) mirror(ctx context.Context, key string, ch <-chan Event) {
	for ev := range ch {
		c.mu.Lock()
		if key != c.effectiveKey() {
			// Stale subscription from before an owner change.
			c.mu.Unlock()
			return
		}
		if ev.Removed {
			c.current = c.freshInitial(ctx)
			c.mu.Unlock()
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(ev.NewValue), &v); err != nil {
			c.logger.Warn(ctx, "unparsable change event, resetting", "key", key, "error", err)
			c.current = c.freshInitial(ctx)
		} else {
			c.current = v
		}
		c.mu.Unlock()
	}
}
