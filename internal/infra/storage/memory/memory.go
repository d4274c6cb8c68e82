// Package memory provides an in-process stand-in for the hosted KV store,
// used when no Redis URL is configured and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// Store is a mutex-guarded map with the same surface as the Redis client.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]entry
	counters map[string]int64
}

func NewStore() *Store {
	return &Store{
		entries:  make(map[string]entry),
		counters: make(map[string]int64),
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// List returns all live keys under prefix in one page; the memory store has
// no real cursor, so next is always 0.
func (s *Store) List(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	var keys []string
	for k, e := range s.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, 0, nil
}

func (s *Store) IncrActivity(ctx context.Context, chatID, userID, date string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters["activity:"+chatID+":"+date]++
	s.counters["activity:"+chatID+":"+date+":"+userID]++
	return nil
}

func (s *Store) GetActivity(ctx context.Context, chatID, date string) (int64, map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := s.counters["activity:"+chatID+":"+date]
	userPrefix := "activity:" + chatID + ":" + date + ":"
	perUser := make(map[string]int64)
	for k, v := range s.counters {
		if strings.HasPrefix(k, userPrefix) {
			perUser[strings.TrimPrefix(k, userPrefix)] = v
		}
	}
	return total, perUser, nil
}

func (s *Store) ClearActivity(ctx context.Context, chatID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, "activity:"+chatID+":"+date)
	userPrefix := "activity:" + chatID + ":" + date + ":"
	for k := range s.counters {
		if strings.HasPrefix(k, userPrefix) {
			delete(s.counters, k)
		}
	}
	return nil
}
