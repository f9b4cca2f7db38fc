// Package embercache provides an in-process, single-node key-value cache
// that speaks a subset of a well-known data-structure server's command
// surface: strings, hashes, lists, sets, sorted sets, and bitmaps.
//
// # Overview
//
// Unlike a full server, embercache has no networking, persistence,
// replication, scripting, pub/sub, client connections, or cluster layer. The
// embedding program creates one or more independent Handles, issues typed
// operations against them, and is responsible for its own concurrency
// control at the handle boundary: operations against a single Handle must
// be serialized by the caller, but distinct Handles share no state (each
// has its own configuration atomics and statistics counters) and may be
// driven concurrently.
//
// # Quick Start
//
//	h := embercache.NewHandle(embercache.Config{
//		MaxMemory:       64 << 20,
//		MaxMemoryPolicy: embercache.PolicyLRU | embercache.PolicyAllKeys,
//	})
//	defer h.Close()
//
//	h.Set("user:123", []byte("alice"), embercache.SetOptions{})
//	value, err := h.Get("user:123")
//
//	stats := h.Stats()
//	fmt.Printf("hit ratio: %.2f%%\n", stats.HitRatio()*100)
//
// # Value Model
//
// Every stored value carries a type tag (String, List, Set, SortedSet,
// Hash) and an encoding tag selecting its in-memory representation: a
// string may be Raw, Embedded (short strings, co-located header+payload) or
// Integer (no external allocation); other types carry a single working
// encoding for their aggregate collaborator (see "Aggregate Types" below).
// Values are reference counted: a refcount of 1 means the value is private
// and may be mutated in place, and two sentinel values exist — Shared
// (immutable, retain/release are no-ops) and Static (stack-borrowed; must be
// promoted to a heap copy before it can be persisted or deleted).
//
// # Keyspace
//
//	h.Expire("session:1", 30)       // TTL in seconds from now
//	h.ExpireAt("session:1", unixTs) // absolute TTL
//	ttl, _ := h.TTL("session:1")    // -1 no expiry, -2 absent
//	h.Persist("session:1")
//	h.Type("session:1")             // "string" / "hash" / ... / "none"
//	h.Del("session:1")
//	n, _ := h.Exists("a", "b")
//	key, err := h.RandomKey()
//
// Expiration is lazy by default: a key past its TTL is deleted the next
// time it is looked up. The embedding host should additionally call
// (*Handle).ActiveExpireCycle on a timer to bound how long an
// never-looked-up expired key can linger; each call checks a bounded
// number of TTL keys, deletes the expired ones, and doubles its budget for
// the next call when more than a quarter of them had expired.
//
// # Memory Governor
//
// If Config.MaxMemory is non-zero, the embedding host should call
// (*Handle).EvictToMemoryCap after writes that might have grown usage past
// the cap. It samples candidates through the configured MaxMemoryPolicy
// (LRU, LFU, random or volatile-ttl, scoped to all keys or only
// keys-with-TTL) and deletes them until usage falls back under the cap; it
// returns an error if the policy is no-eviction, or if usage is still over
// the cap once it runs out of candidates.
//
// # Aggregate Types
//
// Hash, List, Set and Sorted Set each get a minimal, single-encoding
// collaborator (backed by a Go map, a container/list, a membership map, and
// a score map plus a sorted index, respectively) sufficient to exercise the
// keyspace engine's generic add/overwrite/delete/unshare contracts end to
// end:
//
//	h.HSet("user:123", "name", []byte("alice"))
//	h.LPush("queue", []byte("job-1"), []byte("job-2"))
//	h.SAdd("tags", "prod")
//	h.ZAdd("leaderboard", 42, "alice")
//
// # Bitmaps
//
// Bit operations address bits big-endian within each byte (bit 0 is the
// most significant bit of byte 0):
//
//	h.SetBit("flags", 7, 1)
//	bit, _ := h.GetBit("flags", 7)
//	count, _ := h.BitCount("flags", 0, -1, false, true)
//	pos, _ := h.BitPos("flags", 1, 0, -1, true, embercache.StartEndOffset)
//
// # Configuration & Hot Reload
//
// Config carries both the maxmemory tunables and the ambient collaborators
// (Logger, TimeProvider, MetricsCollector). The four tunables can be
// republished at runtime without reconstructing the Handle, either directly
// via (*Handle).SetConfig or continuously via a ConfigWatcher backed by
// github.com/agilira/argus, which polls a JSON/YAML/TOML/HCL/INI/Properties
// file and republishes changed values:
//
//	watcher, err := embercache.NewConfigWatcher(h, embercache.ConfigWatcherOptions{
//		ConfigPath: "embercache.yaml",
//	})
//	watcher.Start()
//	defer watcher.Stop()
//
// # Error Handling
//
// Every façade method returns a structured error built with
// github.com/agilira/go-errors, classified into a small public enum:
//
//	value, err := h.Get("missing")
//	switch {
//	case embercache.IsKeyNotExist(err):
//		// absent or lazily expired — indistinguishable to the caller
//	case embercache.IsInvalidType(err):
//		// key exists under a different type
//	case embercache.IsOverflow(err):
//		// arithmetic or string-length overflow
//	}
//
// CodeOf(err) maps any returned error onto the Code enum (OK, InvalidArg,
// InvalidType, KeyNotExist, Overflow, NoKeys, MemoryFull) for callers that
// prefer a plain comparison over the error-chain predicates.
//
// # Concurrency Model
//
// The keyspace engine itself never suspends and has no internal
// concurrency: a Handle's main map, expiration map, eviction pool and
// access-tracker state are touched only by the goroutine the embedding host
// chooses to serialize calls on. The only state visible across goroutines
// is each Handle's configuration and its four statistics counters (hits,
// misses, evicted, expired), both reached exclusively through sync/atomic
// so a hot-reload watcher can safely update a Handle's tunables while
// another goroutine drives it. These atomics are per Handle: no
// configuration or counter is shared between two Handles.
//
// # Non-goals
//
// Networking, wire serialization, disk persistence, replication, multi-
// database selection, keyspace-event notifications, sharding and
// transactions are explicitly out of scope; the embedding host owns all of
// that.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package embercache
