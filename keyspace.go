// keyspace.go: the keyspace dictionary (C2).
//
// Ported from original_source/db.c's lookupKey / dbAdd / dbSetValue /
// setKey / dbRandomKey / dbGenericDelete / removeExpire / setExpire /
// getExpire family. Where the teacher's lock-free wtinyLFUCache solved a
// concurrency problem (many goroutines racing a shared table) that spec.md
// §5 says does not exist at this layer, this uses a plain Go map instead:
// spec.md §3 itself describes C2 as "a hash map from key-string to value
// object", and the embedding host is required to serialize calls against
// any one handle.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// LookupFlags mirror db.h's LOOKUP_* flags.
type LookupFlags uint8

const (
	LookupNone LookupFlags = 0

	// NoTouch suppresses the access-meta update a hit would otherwise
	// perform.
	NoTouch LookupFlags = 1 << 0
	// NoStats suppresses the hit/miss counter update.
	NoStats LookupFlags = 1 << 1
	// Write marks a write-path lookup: a miss, including one caused by
	// expiry, does not bump the miss counter. Expiry deletes the key on any
	// lookup that does not set NoExpire.
	Write LookupFlags = 1 << 2
	// NoExpire checks expiry but never deletes.
	NoExpire LookupFlags = 1 << 3
)

const (
	fNoTouch  = NoTouch
	fNoStats  = NoStats
	fWrite    = Write
	fNoExpire = NoExpire
)

func (f LookupFlags) has(bit LookupFlags) bool { return f&bit != 0 }

// SetFlags mirror db.h's SETKEY_* flags for set-or-update.
type SetFlags uint8

const (
	SetKeepTTL SetFlags = 1 << iota
)

// Keyspace is C2: the main key→value map, a parallel key→expiry map, the
// process-wide shared atomics, and the per-handle RNG/clock state the
// access tracker and eviction pool draw on.
type Keyspace struct {
	state *sharedState
	clock TimeProvider
	hooks *engineHooks

	main    map[string]*Value
	expires map[string]int64 // absolute milliseconds

	rngState uint64

	// expireFastMode is C5's active-pass mode switch. spec.md §4.5 calls
	// this "process-wide state, not per-handle" in the original single-db
	// server; in this multi-handle library each Keyspace is itself the
	// natural scope for that state.
	expireFastMode bool
}

// engineHooks bundles the ambient collaborators and user callbacks a
// Keyspace invokes on the two key-removing events (eviction, expiration).
// Built once at handle construction (facade.go) and never mutated, so
// reading it requires no synchronization under the single-threaded-per-
// handle model spec.md §5 mandates.
type engineHooks struct {
	metrics  MetricsCollector
	logger   Logger
	onEvict  func(key string)
	onExpire func(key string)
}

func noOpHooks() *engineHooks {
	return &engineHooks{metrics: NoOpMetricsCollector{}, logger: NoOpLogger{}}
}

// NewKeyspace constructs an empty Keyspace bound to state, clock and hooks.
// A nil hooks is replaced with a no-op set so callers never need a nil
// check.
func NewKeyspace(state *sharedState, clock TimeProvider, hooks *engineHooks) *Keyspace {
	if hooks == nil {
		hooks = noOpHooks()
	}
	return &Keyspace{
		state:    state,
		clock:    clock,
		hooks:    hooks,
		main:     make(map[string]*Value),
		expires:  make(map[string]int64),
		rngState: uint64(clock.Now()) | 1,
	}
}

func (ks *Keyspace) policy() Policy       { return ks.state.policy() }
func (ks *Keyspace) lfuDecayTime() uint32 { return ks.state.decayMinutes() }

// fastRand is the teacher's xorshift64 generator (cache.go), kept for
// exactly the use it already served there: cheap, allocation-free sampling.
// Unlike the teacher's version this is not required to be goroutine-safe,
// since a Keyspace is only ever touched by its owning handle's caller.
func (ks *Keyspace) fastRand() uint64 {
	x := ks.rngState
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	ks.rngState = x
	return x
}

// rngFloat returns a uniform float64 in [0, 1), used by the LFU logarithmic
// increment.
func (ks *Keyspace) rngFloat() float64 {
	return float64(ks.fastRand()>>11) / (1 << 53)
}

// lookup resolves key against the keyspace, consulting the expiration
// engine and updating the access tracker and stats counters as side
// effects (§4.2's invariant list).
func (ks *Keyspace) lookup(key string, flags LookupFlags) (*Value, bool) {
	v, exists := ks.main[key]
	if !exists {
		if !flags.has(fNoStats) && !flags.has(fWrite) {
			ks.state.incrMisses()
		}
		return nil, false
	}

	expireFlags := expireIfNeededFlags{avoidDelete: flags.has(fNoExpire)}
	if ks.expireIfNeeded(key, expireFlags) {
		if !flags.has(fNoStats) && !flags.has(fWrite) {
			ks.state.incrMisses()
		}
		return nil, false
	}

	if !flags.has(fNoTouch) {
		ks.touch(v)
	}
	if !flags.has(fNoStats) {
		ks.state.incrHits()
	}
	return v, true
}

// add inserts value at key. The caller must already know key is absent;
// add does not check (db.c's dbAdd contract). A non-Shared value's
// access-meta is initialised for the configured policy: the current LRU
// clock, or an LFU counter of lfuInitVal stamped with the current minute.
func (ks *Keyspace) add(key string, value *Value) {
	if !value.IsShared() {
		now := ks.clock.Now() / 1e9
		if ks.policy().IsLFU() {
			value.meta = packLFU(lfuInitVal, uint16((now/60)&0xFFFF))
		} else {
			value.meta = clockNow(now)
		}
	}
	ks.main[key] = value
}

// overwrite replaces the value at an existing key, carrying the old
// value's access-meta onto the new value and releasing the old one. It
// does not touch the key's TTL (§4.2).
func (ks *Keyspace) overwrite(key string, value *Value) {
	old, exists := ks.main[key]
	if exists {
		value.meta = old.meta
		old.Release()
	}
	ks.main[key] = value
}

// setOrUpdate chooses add vs overwrite at runtime. If flags includes
// SetKeepTTL, an existing TTL is preserved; otherwise any existing TTL is
// cleared (db.c's setKey).
func (ks *Keyspace) setOrUpdate(key string, value *Value, flags SetFlags) {
	if _, exists := ks.main[key]; exists {
		ks.overwrite(key, value)
	} else {
		ks.add(key, value)
	}
	if flags&SetKeepTTL == 0 {
		delete(ks.expires, key)
	}
}

// delete removes key from both maps, releasing its value, and reports
// whether it was present.
func (ks *Keyspace) delete(key string) bool {
	v, exists := ks.main[key]
	if !exists {
		return false
	}
	v.Release()
	delete(ks.main, key)
	delete(ks.expires, key)
	return true
}

// randomKeyMaxRetries bounds the live-lock spec.md §4.5 warns about: when
// the whole keyspace is expired TTL keys, random-key must not spin forever.
const randomKeyMaxRetries = 100

// randomKey returns a uniformly random, live key, retrying past expired
// samples up to randomKeyMaxRetries times.
func (ks *Keyspace) randomKey() (string, bool) {
	if len(ks.main) == 0 {
		return "", false
	}
	for attempt := 0; attempt < randomKeyMaxRetries; attempt++ {
		key, ok := ks.sampleMainKey()
		if !ok {
			return "", false
		}
		if ks.expireIfNeeded(key, expireIfNeededFlags{}) {
			continue
		}
		return key, true
	}
	return "", false
}

// sampleMainKey picks one key from the main map uniformly at random using
// Go map iteration order randomization plus a skip count, avoiding the cost
// of materialising a slice of all keys on every call.
func (ks *Keyspace) sampleMainKey() (string, bool) {
	n := len(ks.main)
	if n == 0 {
		return "", false
	}
	skip := int(ks.fastRand() % uint64(n))
	i := 0
	for k := range ks.main {
		if i == skip {
			return k, true
		}
		i++
	}
	return "", false
}

// size returns the number of live keys, including not-yet-lazily-expired
// ones (the same accounting db.c's dbSize/dictSize gives).
func (ks *Keyspace) size() int { return len(ks.main) }

// flush empties both maps, releasing every value.
func (ks *Keyspace) flush() {
	for _, v := range ks.main {
		v.Release()
	}
	ks.main = make(map[string]*Value)
	ks.expires = make(map[string]int64)
}

// setExpire installs an absolute-millisecond expiry for key.
func (ks *Keyspace) setExpire(key string, whenMs int64) {
	ks.expires[key] = whenMs
}

// removeExpire clears key's TTL, if any, reporting whether one was present.
func (ks *Keyspace) removeExpire(key string) bool {
	_, had := ks.expires[key]
	delete(ks.expires, key)
	return had
}

// getExpire returns key's absolute-millisecond expiry and whether one
// exists.
func (ks *Keyspace) getExpire(key string) (int64, bool) {
	when, ok := ks.expires[key]
	return when, ok
}
