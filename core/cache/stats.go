package cache

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// CacheStats tracks cache performance metrics.
type CacheStats struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
	startTime time.Time
}

func NewCacheStats() *CacheStats {
	return &CacheStats{startTime: time.Now()}
}

func (s *CacheStats) RecordHit()      { s.hits.Add(1) }
func (s *CacheStats) RecordMiss()     { s.misses.Add(1) }
func (s *CacheStats) RecordSet()      { s.sets.Add(1) }
func (s *CacheStats) RecordEviction() { s.evictions.Add(1) }

func (s *CacheStats) Hits() int64      { return s.hits.Load() }
func (s *CacheStats) Misses() int64    { return s.misses.Load() }
func (s *CacheStats) Sets() int64      { return s.sets.Load() }
func (s *CacheStats) Evictions() int64 { return s.evictions.Load() }

// Total returns the number of lookups (hits + misses).
func (s *CacheStats) Total() int64 {
	return s.Hits() + s.Misses()
}

// HitRate returns the hit rate as a value between 0 and 1.
func (s *CacheStats) HitRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Hits()) / float64(total)
}

// Snapshot returns a copy of the current statistics.
func (s *CacheStats) Snapshot() *CacheStats {
	snapshot := &CacheStats{startTime: s.startTime}
	snapshot.hits.Store(s.hits.Load())
	snapshot.misses.Store(s.misses.Load())
	snapshot.sets.Store(s.sets.Load())
	snapshot.evictions.Store(s.evictions.Load())
	return snapshot
}

// StatsSnapshot is a serializable view of CacheStats.
type StatsSnapshot struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Sets      int64   `json:"sets"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
	Uptime    string  `json:"uptime"`
}

func (s *CacheStats) ToSnapshot() StatsSnapshot {
	return StatsSnapshot{
		Hits:      s.Hits(),
		Misses:    s.Misses(),
		Sets:      s.Sets(),
		Evictions: s.Evictions(),
		HitRate:   s.HitRate(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}
}

// LogValue renders the snapshot as a log group.
func (s StatsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("hits", s.Hits),
		slog.Int64("misses", s.Misses),
		slog.Int64("sets", s.Sets),
		slog.Int64("evictions", s.Evictions),
		slog.Float64("hit_rate", s.HitRate),
	)
}
