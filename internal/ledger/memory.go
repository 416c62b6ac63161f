package ledger

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"
)

const shardCount = 16

// Memory is an in-process Ledger backed by a sharded-mutex map. Shards are
// keyed by a hash of the user identifier, so mutations for the same user
// are totally ordered while different users rarely contend.
type Memory struct {
	threshold int
	shards    [shardCount]memoryShard
}

type memoryShard struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemory creates an in-memory ledger with the given ban threshold.
// Zero is a real threshold (the first violation bans); a negative value
// falls back to DefaultBanThreshold.
func NewMemory(threshold int) *Memory {
	if threshold < 0 {
		threshold = DefaultBanThreshold
	}
	m := &Memory{threshold: threshold}
	for i := range m.shards {
		m.shards[i].entries = make(map[string]*Entry)
	}
	return m
}

func (m *Memory) shard(userID string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &m.shards[h.Sum32()%shardCount]
}

func (m *Memory) entry(s *memoryShard, userID string) *Entry {
	e, ok := s.entries[userID]
	if !ok {
		e = &Entry{UserID: userID}
		s.entries[userID] = e
	}
	return e
}

// RecordViolation atomically increments the user's violation count and
// returns the post-increment count together with the ban status.
func (m *Memory) RecordViolation(ctx context.Context, userID string) (int, bool, error) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	e := m.entry(s, userID)
	e.ViolationCount++
	e.LastViolation = time.Now()
	if e.ViolationCount > m.threshold {
		e.Banned = true
	}
	return e.ViolationCount, e.Banned, nil
}

// RecordClean notes a clean review for the user and returns the current
// violation count and ban status. The violation count is untouched.
func (m *Memory) RecordClean(ctx context.Context, userID string) (int, bool, error) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	e := m.entry(s, userID)
	e.CleanCount++
	return e.ViolationCount, e.Banned, nil
}

// IsBanned reports whether the user is banned.
func (m *Memory) IsBanned(ctx context.Context, userID string) (bool, error) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok {
		return e.Banned, nil
	}
	return false, nil
}

// ViolationCount returns the user's current violation count.
func (m *Memory) ViolationCount(ctx context.Context, userID string) (int, error) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok {
		return e.ViolationCount, nil
	}
	return 0, nil
}

// BannedUsers returns the identifiers of all banned users in sorted order.
func (m *Memory) BannedUsers(ctx context.Context) ([]string, error) {
	var banned []string
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for id, e := range s.entries {
			if e.Banned {
				banned = append(banned, id)
			}
		}
		s.mu.Unlock()
	}
	sort.Strings(banned)
	return banned, nil
}
