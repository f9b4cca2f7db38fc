// evictionpool.go: the bounded best-candidate ladder (C4).
//
// Ported from original_source/db.c's freeMemoryIfNeeded pool walk; the
// population bodies (evictionPoolPopulate/evictionPoolAlloc) were not part
// of the retrieved original_source set, so the sampling/merge logic below
// follows spec.md §4.4's prose directly. Sampling uses the same xorshift64
// generator the teacher used for eviction sampling in cache.go.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// evictionPoolSize is EVPOOL_SIZE.
const evictionPoolSize = 16

// evictionCandidate is one slot in the ladder: cached key bytes and an idle
// score. A candidate with an empty key is an unused slot.
type evictionCandidate struct {
	key   string
	idle  uint32
}

// evictionPool is the fixed-capacity array kept sorted ascending by idle
// score, so the worst (most evictable) candidate sits at the highest index.
type evictionPool struct {
	slots [evictionPoolSize]evictionCandidate
}

// populate draws ks.state.samples() random candidates from the scope
// dictated by policy (main map for ALLKEYS, expires map for VOLATILE) and
// merges them into the pool, ejecting the best (lowest idle) entries to
// preserve capacity.
func (p *evictionPool) populate(ks *Keyspace, policy Policy) {
	n := ks.state.samples()
	if n <= 0 {
		n = 5
	}

	for i := 0; i < n; i++ {
		key, idle, ok := ks.sampleForEviction(policy)
		if !ok {
			continue
		}
		p.insert(key, idle)
	}
}

// insert merges one (key, idle) candidate into the pool, maintaining
// ascending order by idle and evicting the current-best (lowest idle, index
// 0) slot when the pool is full and the new candidate is worse than it.
func (p *evictionPool) insert(key string, idle uint32) {
	// Find insertion point keeping ascending order.
	insertAt := evictionPoolSize
	for i := 0; i < evictionPoolSize; i++ {
		if p.slots[i].key == "" || idle < p.slots[i].idle {
			insertAt = i
			break
		}
	}
	if p.slots[evictionPoolSize-1].key != "" {
		if insertAt == 0 {
			return // better than everything already held; drop it
		}
		// Pool is full: drop the current best (index 0) and shift slots
		// [1, insertAt) down by one to make room just below insertAt.
		copy(p.slots[0:insertAt-1], p.slots[1:insertAt])
		p.slots[insertAt-1] = evictionCandidate{key: key, idle: idle}
		return
	}
	// Shift slots [insertAt, end) up by one index to make room.
	copy(p.slots[insertAt+1:], p.slots[insertAt:evictionPoolSize-1])
	p.slots[insertAt] = evictionCandidate{key: key, idle: idle}
}

// next walks the pool from worst (highest index) to best, skipping ghost
// entries (keys no longer present in the scope dictionary), and returns the
// first live candidate, clearing its slot. It reports false when the pool
// holds no live candidate at all.
func (p *evictionPool) next(ks *Keyspace, policy Policy) (string, bool) {
	for i := evictionPoolSize - 1; i >= 0; i-- {
		slot := p.slots[i]
		if slot.key == "" {
			continue
		}
		p.slots[i] = evictionCandidate{}
		if !p.isLive(ks, policy, slot.key) {
			continue // ghost entry
		}
		return slot.key, true
	}
	return "", false
}

func (p *evictionPool) isLive(ks *Keyspace, policy Policy, key string) bool {
	if _, exists := ks.main[key]; !exists {
		return false
	}
	if policy.IsVolatile() {
		if _, hasTTL := ks.expires[key]; !hasTTL {
			return false
		}
	}
	return true
}

// sampleForEviction draws one random candidate key from the scope selected
// by policy and computes its idle score: LRU/LFU idle for the *_LRU/*_LFU
// bases, and negative time-to-expire for VOLATILE_TTL (so that the
// soonest-to-expire key sorts as the most evictable, per §4.4).
func (ks *Keyspace) sampleForEviction(policy Policy) (string, uint32, bool) {
	if policy.Base() == PolicyVolatileTTL {
		key, ok := ks.sampleExpiresKey()
		if !ok {
			return "", 0, false
		}
		when := ks.expires[key]
		now := ks.clock.Now() / 1e6
		// Smaller (or more negative) remaining-time yields a larger idle
		// score; clamp to [0, MaxUint32] so already-expired keys never
		// compute a negative idle and far-off expiries do not wrap.
		remaining := when - now
		if remaining < 0 {
			remaining = 0
		} else if remaining > int64(^uint32(0)) {
			remaining = int64(^uint32(0))
		}
		return key, ^uint32(0) - uint32(remaining), true
	}

	var key string
	var ok bool
	if policy.IsAllKeys() {
		key, ok = ks.sampleMainKey()
	} else {
		key, ok = ks.sampleExpiresKey()
	}
	if !ok {
		return "", 0, false
	}
	v, exists := ks.main[key]
	if !exists {
		return "", 0, false
	}
	return key, ks.idle(v), true
}

// sampleExpiresKey picks one key from the expires map uniformly at random,
// the VOLATILE-scope counterpart to sampleMainKey.
func (ks *Keyspace) sampleExpiresKey() (string, bool) {
	n := len(ks.expires)
	if n == 0 {
		return "", false
	}
	skip := int(ks.fastRand() % uint64(n))
	i := 0
	for k := range ks.expires {
		if i == skip {
			return k, true
		}
		i++
	}
	return "", false
}
