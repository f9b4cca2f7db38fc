// stats.go: process-wide atomic configuration and statistics.
//
// spec.md §5 draws a hard line: the only cross-thread-visible state in the
// whole engine is configuration and the four monotonic counters below, and
// both must be reached exclusively through atomic load/store/add so readers
// never observe a torn value. Field ordering mirrors the teacher's
// alignment discipline in its entry struct: every atomically-addressed
// 64-bit field comes first.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import "sync/atomic"

// sharedState holds everything spec.md §5 permits to be touched from more
// than one goroutine: configuration atomics and statistics counters. A
// *Handle owns exactly one of these; the hot-reload watcher (confwatch.go)
// is the only other writer.
type sharedState struct {
	// 64-bit atomic fields first, for 32-bit alignment.
	maxMemory        uint64 // bytes; 0 = unbounded
	hits             int64
	misses           int64
	evicted          int64
	expired          int64

	// 32-bit atomic fields.
	maxMemoryPolicy  uint32 // Policy bits
	maxMemorySamples int32
	lfuDecayTime     uint32 // minutes per counter decrement
}

func newSharedState(cfg Config) *sharedState {
	s := &sharedState{}
	s.apply(cfg)
	return s
}

// apply atomically republishes the tunable fields of cfg. It is called both
// at construction and by the hot-reload watcher.
func (s *sharedState) apply(cfg Config) {
	atomic.StoreUint64(&s.maxMemory, cfg.MaxMemory)
	atomic.StoreUint32(&s.maxMemoryPolicy, uint32(cfg.MaxMemoryPolicy))
	atomic.StoreInt32(&s.maxMemorySamples, int32(cfg.MaxMemorySamples))
	atomic.StoreUint32(&s.lfuDecayTime, cfg.LFUDecayTime)
}

func (s *sharedState) policy() Policy        { return Policy(atomic.LoadUint32(&s.maxMemoryPolicy)) }
func (s *sharedState) maxMem() uint64        { return atomic.LoadUint64(&s.maxMemory) }
func (s *sharedState) samples() int          { return int(atomic.LoadInt32(&s.maxMemorySamples)) }
func (s *sharedState) decayMinutes() uint32  { return atomic.LoadUint32(&s.lfuDecayTime) }

func (s *sharedState) incrHits()    { atomic.AddInt64(&s.hits, 1) }
func (s *sharedState) incrMisses()  { atomic.AddInt64(&s.misses, 1) }
func (s *sharedState) incrEvicted() { atomic.AddInt64(&s.evicted, 1) }
func (s *sharedState) incrExpired() { atomic.AddInt64(&s.expired, 1) }

// Stats is a read-only snapshot of a Handle's own counters, the
// external rendering of spec.md §3's "global status".
type Stats struct {
	Hits    int64
	Misses  int64
	Evicted int64
	Expired int64
	Keys    int
}

// HitRatio returns Hits/(Hits+Misses) as a fraction in [0, 1], or 0 when no
// lookups have happened yet.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s *sharedState) snapshot(keys int) Stats {
	return Stats{
		Hits:    atomic.LoadInt64(&s.hits),
		Misses:  atomic.LoadInt64(&s.misses),
		Evicted: atomic.LoadInt64(&s.evicted),
		Expired: atomic.LoadInt64(&s.expired),
		Keys:    keys,
	}
}
