package cache

import (
	"math"
	"sync"
)

// Stats counts hits and misses across the entity and search caches.
// Resettable independently of cache contents.
type Stats struct {
	mu     sync.Mutex
	hits   uint64
	misses uint64
}

// StatsSnapshot is a point-in-time read of the counters.
type StatsSnapshot struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Hit records a cache hit.
func (s *Stats) Hit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

// Miss records a cache miss.
func (s *Stats) Miss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
}

// Snapshot returns the counters plus the derived hit rate as a percentage
// rounded to two decimals.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{Hits: s.hits, Misses: s.misses}
	total := s.hits + s.misses
	if total > 0 {
		snap.HitRate = math.Round(float64(s.hits)/float64(total)*10000) / 100
	}
	return snap
}

// Reset zeroes the counters without touching cache contents.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.hits = 0
	s.misses = 0
	s.mu.Unlock()
}
