// accesstracker.go: the 24-bit access-meta field, LRU clock and LFU counter.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// lfuInitVal is the initial LFU counter value assigned to a value when
// Keyspace.add inserts it, matching object.c's initObjectLRUOrLFU
// (LFU_INIT_VAL).
const lfuInitVal = 5

// lfuLogFactor tunes the logarithmic increment's steepness; larger values
// make the counter climb more slowly once past the initial value.
const lfuLogFactor = 10

// clockNow returns the coarse LRU clock sample for the current instant:
// seconds since epoch, masked to 24 bits. Wrap is rare at this width (it
// takes about half a year) and handled via modular subtraction everywhere
// an idle score is computed.
func clockNow(nowSeconds int64) accessMeta {
	return accessMeta(nowSeconds) & accessMetaMask
}

// touchLRU writes the current clock sample into v's access-meta. Shared
// values must never have their access-meta updated (spec.md §3).
func touchLRU(v *Value, nowSeconds int64) {
	if v.IsShared() {
		return
	}
	v.meta = clockNow(nowSeconds)
}

// idleLRU computes the LRU idle score for v: how many clock ticks have
// elapsed since its last touch, via modular subtraction so wraparound does
// not produce a negative or absurd idle value.
func idleLRU(v *Value, nowSeconds int64) uint32 {
	now := clockNow(nowSeconds)
	return uint32((now - v.meta) & accessMetaMask)
}

// lfuCounter and lfuLastDecrMinute decompose the 24-bit LFU access-meta
// field: the low 8 bits are the logarithmic counter, the high 16 bits are
// the minute of the last decrement (spec.md §3).
func lfuCounter(meta accessMeta) uint8        { return uint8(meta & 0xFF) }
func lfuLastDecrMinute(meta accessMeta) uint16 { return uint16((meta >> 8) & 0xFFFF) }

func packLFU(counter uint8, minute uint16) accessMeta {
	return accessMeta(counter) | (accessMeta(minute) << 8)
}

// lfuDecrAndReturn applies the time-based decay step described in §4.3: it
// subtracts one count per lfuDecayTime minutes elapsed since the stored
// last-decrement minute, saturating at 0, and returns the decayed counter
// without writing it back (the caller folds it into the subsequent
// increment step so only one access-meta write happens per touch).
func lfuDecrAndReturn(meta accessMeta, nowMinute uint16, lfuDecayTime uint32) uint8 {
	counter := lfuCounter(meta)
	if lfuDecayTime == 0 {
		return counter
	}
	last := lfuLastDecrMinute(meta)
	elapsed := minutesElapsed(last, nowMinute)
	decr := elapsed / lfuDecayTime
	if decr == 0 {
		return counter
	}
	if uint32(counter) <= decr {
		return 0
	}
	return counter - uint8(decr)
}

// minutesElapsed computes the modular difference between two 16-bit minute
// samples, treating the field as a wrapping counter exactly like the LRU
// clock.
func minutesElapsed(last, now uint16) uint32 {
	return uint32(now-last) & 0xFFFF
}

// lfuLogIncr applies the logarithmic increment described in §4.3: with
// probability 1/(1+(counter-5)*lfuLogFactor), increment by one, capped at
// 255. rng must return a float64 uniformly distributed in [0, 1).
func lfuLogIncr(counter uint8, rng func() float64) uint8 {
	if counter >= 255 {
		return 255
	}
	baseVal := int(counter) - lfuInitVal
	if baseVal < 0 {
		baseVal = 0
	}
	p := 1.0 / (float64(baseVal)*lfuLogFactor + 1.0)
	if rng() < p {
		return counter + 1
	}
	return counter
}

// touchLFU performs the decay-then-increment sequence on v's access-meta and
// returns the resulting counter. Shared values are never touched.
func touchLFU(v *Value, nowSeconds int64, lfuDecayTime uint32, rng func() float64) uint8 {
	if v.IsShared() {
		return lfuCounter(v.meta)
	}
	nowMinute := uint16((nowSeconds / 60) & 0xFFFF)
	decayed := lfuDecrAndReturn(v.meta, nowMinute, lfuDecayTime)
	incremented := lfuLogIncr(decayed, rng)
	v.meta = packLFU(incremented, nowMinute)
	return incremented
}

// idleLFU computes the LFU idle score: 255 minus the (decayed, but not
// written back) counter, so hotter keys read as less idle, sharing the
// "higher is more evictable" convention with LRU (spec.md §4.3).
func idleLFU(v *Value, nowSeconds int64, lfuDecayTime uint32) uint32 {
	nowMinute := uint16((nowSeconds / 60) & 0xFFFF)
	decayed := lfuDecrAndReturn(v.meta, nowMinute, lfuDecayTime)
	return uint32(255 - decayed)
}

// touch updates v's access-meta under the currently configured policy and
// is the single entry point the keyspace dictionary calls on every
// non-NoTouch lookup.
func (ks *Keyspace) touch(v *Value) {
	if v.IsShared() {
		return
	}
	now := ks.clock.Now()
	if ks.policy().IsLFU() {
		touchLFU(v, now/1e9, ks.lfuDecayTime(), ks.rngFloat)
		return
	}
	touchLRU(v, now/1e9)
}

// idle computes v's idle score under the currently configured policy.
func (ks *Keyspace) idle(v *Value) uint32 {
	now := ks.clock.Now() / 1e9
	if ks.policy().IsLFU() {
		return idleLFU(v, now, ks.lfuDecayTime())
	}
	return idleLRU(v, now)
}
