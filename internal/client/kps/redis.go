package kps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisEventChannel = "kps:changes"

// RedisStorage keeps slots in Redis and publishes every change on a pub/sub
// channel, giving all connected clients an evented substrate instead of
// polling. It implements both SlotStorage and Watcher.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage wraps an existing Redis client.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func slotKey(key string) string {
	return fmt.Sprintf("slot:%s", key)
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, slotKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get slot[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key string, value string) error {
	old, _ := s.client.Get(ctx, slotKey(key)).Result()
	if err := s.client.Set(ctx, slotKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set slot[%s]: %w", key, err)
	}
	s.publish(ctx, Event{Key: key, OldValue: old, NewValue: value})
	return nil
}

func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	old, err := s.client.Get(ctx, slotKey(key)).Result()
	if err == redis.Nil {
		return nil
	}
	if err := s.client.Del(ctx, slotKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove slot[%s]: %w", key, err)
	}
	s.publish(ctx, Event{Key: key, OldValue: old, Removed: true})
	return nil
}

// publish is best-effort: a lost event only widens the staleness window.
func (s *RedisStorage) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, redisEventChannel, payload).Err()
}

// Watch implements Watcher via pub/sub. Events for other keys are filtered
// out client-side; the channel closes when ctx is cancelled.
func (s *RedisStorage) Watch(ctx context.Context, key string) (<-chan Event, error) {
	sub := s.client.Subscribe(ctx, redisEventChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to slot changes: %w", err)
	}

	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				if ev.Key != key {
					continue
				}
				select {
				case ch <- ev:
				default:
				}
			}
		}
	}()
	return ch, nil
}
