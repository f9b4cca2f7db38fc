// policy.go: maxmemory policy bitflags.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// Policy is the maxmemory_policy bitflag described in spec.md §3/§6: a base
// selector combined with a scope flag and optional modifiers.
type Policy uint32

// Base selectors. Exactly one must be set.
const (
	PolicyLRU Policy = 1 << iota
	PolicyLFU
	PolicyRandom
	PolicyVolatileTTL
	PolicyNoEviction

	// PolicyAllKeys is the scope flag: when unset, eviction considers only
	// keys with a TTL (VOLATILE scope).
	PolicyAllKeys

	// PolicyNoSharedIntegers disables the shared-integer pool for this
	// policy, per spec.md §9's note that shared values cannot carry
	// per-key access metadata.
	PolicyNoSharedIntegers
)

const policyBaseMask = PolicyLRU | PolicyLFU | PolicyRandom | PolicyVolatileTTL | PolicyNoEviction

// Base returns the base selector bits of p, stripping scope/modifier flags.
func (p Policy) Base() Policy { return p & policyBaseMask }

// IsAllKeys reports whether p's scope is ALLKEYS rather than VOLATILE-only.
func (p Policy) IsAllKeys() bool { return p&PolicyAllKeys != 0 }

// IsVolatile reports the complement of IsAllKeys, spelled out for readability
// at call sites that branch on scope.
func (p Policy) IsVolatile() bool { return !p.IsAllKeys() }

// IsLFU reports whether p selects logarithmic-counter access tracking.
func (p Policy) IsLFU() bool { return p.Base() == PolicyLFU }

// IsNoEviction reports whether p forbids eviction entirely.
func (p Policy) IsNoEviction() bool { return p.Base() == PolicyNoEviction }

// NoSharedIntegers reports whether the shared-integer pool must be skipped
// under p.
func (p Policy) NoSharedIntegers() bool { return p&PolicyNoSharedIntegers != 0 }

// String renders p in the familiar "allkeys-lru" / "volatile-ttl" form used
// by configuration files and the hot-reload watcher.
func (p Policy) String() string {
	var base string
	switch p.Base() {
	case PolicyLRU:
		base = "lru"
	case PolicyLFU:
		base = "lfu"
	case PolicyRandom:
		base = "random"
	case PolicyVolatileTTL:
		base = "ttl"
	case PolicyNoEviction:
		return "noeviction"
	default:
		base = "unknown"
	}
	scope := "volatile"
	if p.IsAllKeys() {
		scope = "allkeys"
	}
	return scope + "-" + base
}

// ParsePolicy parses the familiar "allkeys-lru"-style spelling used in
// configuration files back into a Policy bitflag; it is the counterpart to
// String and is used by the hot-reload config watcher.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "noeviction":
		return PolicyNoEviction, true
	case "allkeys-lru":
		return PolicyLRU | PolicyAllKeys, true
	case "volatile-lru":
		return PolicyLRU, true
	case "allkeys-lfu":
		return PolicyLFU | PolicyAllKeys, true
	case "volatile-lfu":
		return PolicyLFU, true
	case "allkeys-random":
		return PolicyRandom | PolicyAllKeys, true
	case "volatile-random":
		return PolicyRandom, true
	case "volatile-ttl":
		return PolicyVolatileTTL, true
	default:
		return 0, false
	}
}
