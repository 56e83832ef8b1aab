package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"hackhub/pkg/redis"
)

// SnapshotStore remembers the last computed rank per team for a leaderboard
// scope. It backs the rank-trend arrows; losing a snapshot is harmless, the
// next compute just reports every team as new.
type SnapshotStore interface {
	Get(ctx context.Context, hackathonID, scope string) (map[string]int, error)
	Put(ctx context.Context, hackathonID, scope string, ranks map[string]int) error
}

// RedisSnapshotStore stores snapshots as JSON blobs in Redis so rank trends
// survive restarts and are shared across instances.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (s *RedisSnapshotStore) Get(ctx context.Context, hackathonID, scope string) (map[string]int, error) {
	key := fmt.Sprintf(redis.KeyLeaderboardSnapshot, hackathonID, scope)
	val, err := s.client.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard snapshot: %w", err)
	}
	ranks := make(map[string]int)
	if err := json.Unmarshal([]byte(val), &ranks); err != nil {
		// A corrupt snapshot is treated as absent rather than failing the
		// leaderboard read.
		return nil, nil
	}
	return ranks, nil
}

func (s *RedisSnapshotStore) Put(ctx context.Context, hackathonID, scope string, ranks map[string]int) error {
	key := fmt.Sprintf(redis.KeyLeaderboardSnapshot, hackathonID, scope)
	data, err := json.Marshal(ranks)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard snapshot: %w", err)
	}
	if err := s.client.Set(ctx, key, string(data), redis.TTLSnapshot); err != nil {
		return fmt.Errorf("failed to store leaderboard snapshot: %w", err)
	}
	return nil
}

// MemorySnapshotStore keeps snapshots in process memory. Used in tests and
// when no Redis is configured.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	ranks map[string]map[string]int
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{ranks: make(map[string]map[string]int)}
}

func (s *MemorySnapshotStore) Get(_ context.Context, hackathonID, scope string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.ranks[hackathonID+":"+scope]
	if !ok {
		return nil, nil
	}
	out := make(map[string]int, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

func (s *MemorySnapshotStore) Put(_ context.Context, hackathonID, scope string, ranks map[string]int) error {
	copied := make(map[string]int, len(ranks))
	for k, v := range ranks {
		copied[k] = v
	}
	s.mu.Lock()
	s.ranks[hackathonID+":"+scope] = copied
	s.mu.Unlock()
	return nil
}
