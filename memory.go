// memory.go: the memory governor (C6).
//
// Ported from original_source/db.c's freeMemoryIfNeeded. Allocator usage is
// read via runtime.ReadMemStats, the same signal other_examples' EchoVault
// keyspace sketches (in its commented-out adjustMemoryUsage) reads to drive
// eviction; no pack library wraps the Go heap-stats API, so stdlib is used
// directly here.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import "runtime"

// maxGovernorIterations bounds EvictToMemoryCap's loop independent of
// "until freed", per spec.md §9's open question about fragmentation
// causing deletes to free less than the allocator reports.
const maxGovernorIterations = 10000

// usedMemory reports the process's current heap usage, the governor's
// reading of "resident allocator usage" (§4.6). Using HeapAlloc rather than
// Sys keeps the reading responsive to actual live objects instead of the
// high-water mark the runtime has reserved from the OS.
func usedMemory() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// EvictToMemoryCap drives the eviction pool until the process's heap usage
// falls under ks.state's configured maxmemory. It returns a memory-full
// error if policy forbids eviction, or if usage is still over the cap once
// no eviction candidate is left or maxGovernorIterations is reached (§4.6).
func (ks *Keyspace) EvictToMemoryCap() error {
	limit := ks.state.maxMem()
	if limit == 0 {
		return nil
	}
	used := usedMemory()
	if used <= limit {
		return nil
	}

	policy := ks.policy()
	if policy.IsNoEviction() {
		return NewErrMemoryFull(used, limit)
	}

	pool := &evictionPool{}

	for i := 0; i < maxGovernorIterations; i++ {
		used = usedMemory()
		if used <= limit {
			return nil
		}

		var key string
		var ok bool
		if policy.Base() == PolicyRandom {
			if policy.IsAllKeys() {
				key, ok = ks.sampleMainKey()
			} else {
				key, ok = ks.sampleExpiresKey()
			}
		} else {
			key, ok = pool.next(ks, policy)
			if !ok {
				pool.populate(ks, policy)
				key, ok = pool.next(ks, policy)
			}
		}
		if !ok {
			break
		}

		if ks.delete(key) {
			ks.state.incrEvicted()
			ks.hooks.metrics.RecordEviction()
			if ks.hooks.onEvict != nil {
				ks.hooks.onEvict(key)
			}
		}
	}

	used = usedMemory()
	if used <= limit {
		return nil
	}
	return NewErrMemoryFull(used, limit)
}
