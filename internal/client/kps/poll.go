package kps

import (
	"context"
	"time"
)

// PollWatcher derives change events for any SlotStorage by sampling the slot
// on an interval. It exists for backends without a native change feed
// (SQLite); convergence is last-write-wins with a staleness window of at
// most one interval.
type PollWatcher struct {
	storage  SlotStorage
	interval time.Duration
}

// NewPollWatcher wraps storage with an interval-based watcher.
func NewPollWatcher(storage SlotStorage, interval time.Duration) *PollWatcher {
	return &PollWatcher{storage: storage, interval: interval}
}

// Watch implements Watcher. The first sample primes the last-seen state
// without emitting an event, so only changes made after the subscription are
// reported.
func (w *PollWatcher) Watch(ctx context.Context, key string) (<-chan Event, error) {
	last, present, err := w.storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			value, ok, err := w.storage.Get(ctx, key)
			if err != nil {
				continue
			}
			switch {
			case ok && (!present || value != last):
				ev := Event{Key: key, OldValue: last, NewValue: value}
				select {
				case ch <- ev:
				default:
				}
			case !ok && present:
				ev := Event{Key: key, OldValue: last, Removed: true}
				select {
				case ch <- ev:
				default:
				}
			}
			last, present = value, ok
		}
	}()
	return ch, nil
}
