// expiration.go: lazy and active expiration (C5).
//
// Ported from original_source/db.c's expireIfNeeded, activeExpireCycleTryExpire
// and activeExpireCycle.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// activeExpireCycleLookupsPerLoop is the slow-mode sample budget per active
// pass; fast mode doubles it (§4.5).
const activeExpireCycleLookupsPerLoop = 20

// expiredRatioThreshold is the fraction of a sampling round that must come
// back expired before the next pass switches to fast mode.
const expiredRatioThreshold = 0.25

// expireIfNeededFlags controls expireIfNeeded's mutation behavior.
type expireIfNeededFlags struct {
	// avoidDelete reports expiry without deleting the key (db.h's
	// EXPIRE_AVOID_DELETE_EXPIRED).
	avoidDelete bool
}

// expireIfNeeded is the lazy-expiry entry point called from lookup. It
// reports whether key is logically expired; when it is and avoidDelete was
// not requested, the key is deleted and the expired-key counter bumped.
func (ks *Keyspace) expireIfNeeded(key string, flags expireIfNeededFlags) bool {
	when, hasTTL := ks.expires[key]
	if !hasTTL {
		return false
	}
	now := ks.clock.Now() / 1e6 // milliseconds
	if now <= when {
		return false
	}
	if flags.avoidDelete {
		return true
	}
	ks.promoteIfStaticThenDelete(key)
	ks.state.incrExpired()
	ks.hooks.metrics.RecordExpiration()
	if ks.hooks.onExpire != nil {
		ks.hooks.onExpire(key)
	}
	return true
}

// promoteIfStaticThenDelete deletes key, first promoting a Static value to
// a heap copy if necessary (§4.5's key-promotion note); in this
// implementation values are never stack-borrowed across a delete call, so
// promotion is a defensive no-op kept to document the invariant the C
// source enforces structurally.
func (ks *Keyspace) promoteIfStaticThenDelete(key string) {
	if v, exists := ks.main[key]; exists && v.IsStatic() {
		cp := *v
		cp.refcount = 1
		ks.main[key] = &cp
	}
	ks.delete(key)
}

// ActiveExpireCycle runs one bounded sweep of the active-expiry pass
// described in §4.5 and returns the number of keys actually deleted.
//
// The host schedules this call periodically; it never suspends and never
// loops outside its fixed sample budget.
func (ks *Keyspace) ActiveExpireCycle() int {
	if len(ks.expires) == 0 {
		return 0
	}

	budget := activeExpireCycleLookupsPerLoop
	if ks.expireFastMode {
		budget *= 2
	}
	if budget > len(ks.expires) {
		budget = len(ks.expires)
	}

	now := ks.clock.Now() / 1e6
	sampled := 0
	deleted := 0
	for key, when := range ks.expires {
		if sampled >= budget {
			break
		}
		sampled++
		if now > when {
			ks.promoteIfStaticThenDelete(key)
			ks.state.incrExpired()
			ks.hooks.metrics.RecordExpiration()
			if ks.hooks.onExpire != nil {
				ks.hooks.onExpire(key)
			}
			deleted++
		}
	}

	if sampled > 0 && float64(deleted)/float64(sampled) > expiredRatioThreshold {
		ks.expireFastMode = true
	} else {
		ks.expireFastMode = false
	}

	return deleted
}
