package kps

import (
	"context"
	"sync"
)

// MemStorage is an in-memory SlotStorage with built-in change broadcasting.
// It backs unit tests and short-lived sessions where durability is not
// needed; every watcher of a key receives Set/Remove events, which is how
// two cells over the same slot converge.
type MemStorage struct {
	mu    sync.Mutex
	slots map[string]string
	subs  map[string][]chan Event
}

// NewMemStorage creates an empty in-memory storage.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		slots: make(map[string]string),
		subs:  make(map[string][]chan Event),
	}
}

func (s *MemStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *MemStorage) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.slots[key]
	s.slots[key] = value
	s.notify(Event{Key: key, OldValue: old, NewValue: value})
	return nil
}

func (s *MemStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.slots[key]
	if !ok {
		return nil
	}
	delete(s.slots, key)
	s.notify(Event{Key: key, OldValue: old, Removed: true})
	return nil
}

// Watch implements Watcher. The returned channel is closed when ctx is
// cancelled.
func (s *MemStorage) Watch(ctx context.Context, key string) (<-chan Event, error) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs[key] = append(s.subs[key], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[key]
		for i, c := range subs {
			if c == ch {
				s.subs[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// notify is called with s.mu held. Slow subscribers drop events rather than
// block a writer; the next event re-converges them.
func (s *MemStorage) notify(ev Event) {
	for _, ch := range s.subs[ev.Key] {
		select {
		case ch <- ev:
		default:
		}
	}
}
