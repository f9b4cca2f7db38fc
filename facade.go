// facade.go: the public façade (C8) — Handle lifecycle and the keyspace and
// string entry points named in spec.md §6; the bitmap commands live in
// bitmap.go and the aggregate-type commands in hash.go, list.go, set.go and
// zset.go.
//
// Argument validation lives here and nowhere else; façade methods translate
// validated input into calls against C2 (keyspace.go), C5 (expiration.go),
// C6 (memory.go) and C7 (bitmap.go), and never encode domain logic of their
// own (spec.md §4.8).
//
// Ported from original_source/t_string.c's RcSet/RcSetnx/RcSetxx/RcGet/
// RcIncr/RcDecr/RcIncrBy/RcDecrBy/RcIncrByFloat/RcAppend/RcGetRange/
// RcSetRange/RcStrlen wrappers, and original_source/db.c's expire/ttl/
// persist/type/del/exists/randomKey family.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import (
	"math"
	"strconv"
)

// Handle is one independent cache instance: its own keyspace dictionary and
// its own configuration/stats atomics, created by NewHandle and not shared
// with any other Handle.
// spec.md §5 requires the embedding host to serialize calls against any one
// Handle; two Handles may be driven concurrently by independent goroutines.
type Handle struct {
	cfg   Config
	state *sharedState
	ks    *Keyspace
}

// NewHandle constructs a Handle with cfg normalized by Config.Validate.
func NewHandle(cfg Config) *Handle {
	_ = cfg.Validate()
	state := newSharedState(cfg)
	hooks := &engineHooks{
		metrics:  cfg.MetricsCollector,
		logger:   cfg.Logger,
		onEvict:  cfg.OnEvict,
		onExpire: cfg.OnExpire,
	}
	return &Handle{
		cfg:   cfg,
		state: state,
		ks:    NewKeyspace(state, cfg.TimeProvider, hooks),
	}
}

// Close releases every value currently stored in the handle. It never
// returns an error; the signature matches the teacher's io.Closer-shaped
// Close for drop-in symmetry with other AGILira libraries.
func (h *Handle) Close() error {
	h.ks.flush()
	return nil
}

// SetConfig republishes the four process-wide tunables spec.md §6 names
// under "set-config": maxmemory, maxmemory_policy, maxmemory_samples,
// lfu_decay_time. Ambient collaborators (Logger, TimeProvider,
// MetricsCollector) are fixed at NewHandle time and not reconsidered here.
func (h *Handle) SetConfig(cfg Config) {
	_ = cfg.Validate()
	h.state.apply(cfg)
}

// Stats returns a read-only snapshot of the handle's hit/miss/evicted/
// expired counters plus the current key count.
func (h *Handle) Stats() Stats {
	return h.state.snapshot(h.ks.size())
}

// ActiveExpireCycle runs one bounded active-expiry sweep (§4.5) and returns
// the number of keys deleted. The embedding host is expected to call this
// periodically, e.g. from a timer goroutine.
func (h *Handle) ActiveExpireCycle() int {
	return h.ks.ActiveExpireCycle()
}

// EvictToMemoryCap runs the memory governor (§4.6): if usage is over
// maxmemory, it evicts keys via the configured policy until under the cap
// or returns a memory-full error.
func (h *Handle) EvictToMemoryCap() error {
	return h.ks.EvictToMemoryCap()
}

func nonEmpty(command, key string) error {
	if key == "" {
		return NewErrInvalidArg(command, "key must not be empty")
	}
	return nil
}

// --- Keyspace commands (§6 "Keyspace") --------------------------------

// Expire sets key's TTL to seconds from now, reporting whether key existed.
func (h *Handle) Expire(key string, seconds int64) (bool, error) {
	if err := nonEmpty("expire", key); err != nil {
		return false, err
	}
	return h.ExpireAt(key, h.nowSeconds()+seconds)
}

// ExpireAt sets key's TTL to the absolute unixSeconds instant, reporting
// whether key existed. An instant in the past expires the key immediately,
// inside this call rather than at the key's next lookup.
func (h *Handle) ExpireAt(key string, unixSeconds int64) (bool, error) {
	if err := nonEmpty("expireat", key); err != nil {
		return false, err
	}
	if _, exists := h.ks.lookup(key, NoTouch|NoStats|Write); !exists {
		return false, nil
	}
	h.ks.setExpire(key, unixSeconds*1000)
	// A past/now instant must take effect immediately rather than waiting
	// for the next lookup, matching db.c's expireIfNeeded being checked
	// synchronously by every caller that might observe staleness.
	h.ks.expireIfNeeded(key, expireIfNeededFlags{})
	return true, nil
}

// TTL returns key's remaining time-to-live in seconds: -1 if key exists
// with no TTL, -2 if key does not exist.
func (h *Handle) TTL(key string) (int64, error) {
	if err := nonEmpty("ttl", key); err != nil {
		return -2, err
	}
	if _, exists := h.ks.lookup(key, NoTouch|NoStats); !exists {
		return -2, nil
	}
	whenMs, hasTTL := h.ks.getExpire(key)
	if !hasTTL {
		return -1, nil
	}
	remainingMs := whenMs - h.nowMillis()
	if remainingMs < 0 {
		remainingMs = 0
	}
	return (remainingMs + 999) / 1000, nil
}

// Persist removes key's TTL, reporting whether one was present.
func (h *Handle) Persist(key string) (bool, error) {
	if err := nonEmpty("persist", key); err != nil {
		return false, err
	}
	if _, exists := h.ks.lookup(key, NoTouch|NoStats); !exists {
		return false, nil
	}
	return h.ks.removeExpire(key), nil
}

// Type returns key's type name (string/list/set/zset/hash/stream), or
// "none" if key does not exist.
func (h *Handle) Type(key string) (string, error) {
	if err := nonEmpty("type", key); err != nil {
		return "", err
	}
	v, exists := h.ks.lookup(key, NoTouch|NoStats)
	if !exists {
		return "none", nil
	}
	return v.typ.String(), nil
}

// Del deletes each of keys, returning the number actually removed.
func (h *Handle) Del(keys ...string) (int, error) {
	start := h.ks.clock.Now()
	n := 0
	for _, key := range keys {
		if err := nonEmpty("del", key); err != nil {
			return n, err
		}
		// expireIfNeeded first so an already-expired key does not count
		// as a live deletion (it would already be gone from the caller's
		// perspective).
		h.ks.expireIfNeeded(key, expireIfNeededFlags{})
		if h.ks.delete(key) {
			n++
		}
	}
	h.ks.hooks.metrics.RecordDelete(h.ks.clock.Now() - start)
	return n, nil
}

// Exists reports how many of keys are currently present and unexpired.
func (h *Handle) Exists(keys ...string) (int, error) {
	n := 0
	for _, key := range keys {
		if err := nonEmpty("exists", key); err != nil {
			return n, err
		}
		if _, exists := h.ks.lookup(key, NoTouch|NoStats); exists {
			n++
		}
	}
	return n, nil
}

// Size returns the number of keys currently in the keyspace, including any
// not yet lazily expired.
func (h *Handle) Size() int { return h.ks.size() }

// Flush removes every key from the handle.
func (h *Handle) Flush() { h.ks.flush() }

// RandomKey returns a uniformly random, live key, or a no-keys error if the
// keyspace is empty (or entirely composed of expired TTL keys — see
// spec.md §4.5's live-lock note).
func (h *Handle) RandomKey() (string, error) {
	key, ok := h.ks.randomKey()
	if !ok {
		return "", NewErrNoKeys()
	}
	return key, nil
}

func (h *Handle) nowSeconds() int64 { return h.ks.clock.Now() / 1e9 }
func (h *Handle) nowMillis() int64  { return h.ks.clock.Now() / 1e6 }

// --- String commands (§6 "Strings") -------------------------------------

// SetOptions configures Set's NX/XX and EX/PX variants (t_string.c's
// setGenericCommand flags).
type SetOptions struct {
	// NX requires key to be absent; XX requires key to be present. Setting
	// both is an invalid-arg error.
	NX, XX bool

	// ExpireSeconds/ExpireMillis install a relative TTL on success; at most
	// one of the two may be set (when both are, ExpireSeconds is used).
	// Zero means "no expire option given". Set has no absolute-expiry
	// option; ExpireAt after Set installs one.
	ExpireSeconds int64
	ExpireMillis  int64

	// KeepTTL preserves any existing TTL instead of clearing it (ignored
	// together with either Expire* field).
	KeepTTL bool
}

// Set implements SET key value [NX|XX] [EX seconds|PX millis]. It reports
// whether the write was performed (false without error when an NX/XX
// precondition was not met).
func (h *Handle) Set(key string, value []byte, opts SetOptions) (bool, error) {
	if err := nonEmpty("set", key); err != nil {
		return false, err
	}
	if opts.NX && opts.XX {
		return false, NewErrInvalidArg("set", "NX and XX are mutually exclusive")
	}
	if opts.ExpireSeconds < 0 || opts.ExpireMillis < 0 {
		return false, NewErrInvalidArg("set", "expire must be positive")
	}

	start := h.ks.clock.Now()
	_, exists := h.ks.lookup(key, NoTouch|NoStats|Write)
	if opts.NX && exists {
		return false, nil
	}
	if opts.XX && !exists {
		return false, nil
	}

	setFlags := SetFlags(0)
	if opts.KeepTTL {
		setFlags = SetKeepTTL
	}
	h.ks.setOrUpdate(key, NewStringValue(value), setFlags)

	switch {
	case opts.ExpireSeconds > 0:
		h.ks.setExpire(key, h.nowMillis()+opts.ExpireSeconds*1000)
	case opts.ExpireMillis > 0:
		h.ks.setExpire(key, h.nowMillis()+opts.ExpireMillis)
	}
	h.ks.hooks.metrics.RecordSet(h.ks.clock.Now() - start)
	return true, nil
}

// stringValueOf resolves key for read/write, validating it is a String
// (absent is reported via exists=false, never an error).
func (h *Handle) stringValueOf(command, key string, flags LookupFlags) (*Value, bool, error) {
	v, exists := h.ks.lookup(key, flags)
	if !exists {
		return nil, false, nil
	}
	if v.typ != TypeString {
		return nil, true, NewErrInvalidType(key, TypeString.String(), v.typ.String())
	}
	return v, true, nil
}

// Get implements GET key.
func (h *Handle) Get(key string) ([]byte, error) {
	if err := nonEmpty("get", key); err != nil {
		return nil, err
	}
	start := h.ks.clock.Now()
	v, exists, err := h.stringValueOf("get", key, LookupNone)
	h.ks.hooks.metrics.RecordGet(h.ks.clock.Now()-start, exists && err == nil)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewErrKeyNotExist(key)
	}
	return v.AsBytes(), nil
}

// incrDecr is the shared body of Incr/Decr/IncrBy/DecrBy, ported from
// t_string.c's incrDecrCommand: overflow-checked 64-bit add, in-place
// mutation when the value is a private Integer-encoded string, a fresh
// Integer value otherwise.
func (h *Handle) incrDecr(command, key string, delta int64) (int64, error) {
	if err := nonEmpty(command, key); err != nil {
		return 0, err
	}
	v, exists, err := h.stringValueOf(command, key, Write)
	if err != nil {
		return 0, err
	}

	var current int64
	if exists {
		n, ok := v.AsInt()
		if !ok {
			return 0, NewErrInvalidType(key, "integer string", "non-numeric string")
		}
		current = n
	}

	if (delta < 0 && current < 0 && delta < math.MinInt64-current) ||
		(delta > 0 && current > 0 && delta > math.MaxInt64-current) {
		return 0, NewErrOverflow(command, "result exceeds 64-bit range")
	}
	result := current + delta

	if exists && v.refcount == 1 && v.encoding == EncInt {
		v.intval = result
	} else if exists {
		h.ks.overwrite(key, &Value{typ: TypeString, encoding: EncInt, refcount: 1, meta: v.meta, intval: result})
	} else {
		h.ks.add(key, &Value{typ: TypeString, encoding: EncInt, refcount: 1, intval: result})
	}
	return result, nil
}

// Incr implements INCR key.
func (h *Handle) Incr(key string) (int64, error) { return h.incrDecr("incr", key, 1) }

// Decr implements DECR key.
func (h *Handle) Decr(key string) (int64, error) { return h.incrDecr("decr", key, -1) }

// IncrBy implements INCRBY key delta.
func (h *Handle) IncrBy(key string, delta int64) (int64, error) {
	return h.incrDecr("incrby", key, delta)
}

// DecrBy implements DECRBY key delta.
func (h *Handle) DecrBy(key string, delta int64) (int64, error) {
	if delta == math.MinInt64 {
		return 0, NewErrOverflow("decrby", "negated delta exceeds 64-bit range")
	}
	return h.incrDecr("decrby", key, -delta)
}

// IncrByFloat implements INCRBYFLOAT key delta, ported from t_string.c's
// incrbyfloatCommand: the result must be finite, and is stored as a freshly
// rendered string value whose encoding NewStringValue picks (Redis's
// long-double-to-string rendering trims trailing zeros; strconv's 'f'
// format with precision -1 gives the Go equivalent).
func (h *Handle) IncrByFloat(key string, delta float64) (float64, error) {
	if err := nonEmpty("incrbyfloat", key); err != nil {
		return 0, err
	}
	v, exists, err := h.stringValueOf("incrbyfloat", key, Write)
	if err != nil {
		return 0, err
	}

	var current float64
	if exists {
		n, ok := v.AsInt()
		if ok {
			current = float64(n)
		} else {
			parsed, perr := strconv.ParseFloat(string(v.AsBytes()), 64)
			if perr != nil {
				return 0, NewErrInvalidType(key, "numeric string", "non-numeric string")
			}
			current = parsed
		}
	}

	result := current + delta
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, NewErrOverflow("incrbyfloat", "result is NaN or infinite")
	}

	rendered := strconv.FormatFloat(result, 'f', -1, 64)
	if exists {
		h.ks.overwrite(key, NewStringValue([]byte(rendered)))
	} else {
		h.ks.add(key, NewStringValue([]byte(rendered)))
	}
	return result, nil
}

// Append implements APPEND key value, returning the resulting string
// length. Creating the key on absence and growing it via unshare-string on
// presence, exactly as t_string.c's appendCommand does.
func (h *Handle) Append(key string, value []byte) (int64, error) {
	if err := nonEmpty("append", key); err != nil {
		return 0, err
	}
	v, exists, err := h.stringValueOf("append", key, Write)
	if err != nil {
		return 0, err
	}
	if !exists {
		if int64(len(value)) > maxStringBytes {
			return 0, NewErrOverflow("append", "resulting string exceeds maximum size")
		}
		h.ks.add(key, NewStringValue(value))
		return int64(len(value)), nil
	}

	total := int64(v.Length()) + int64(len(value))
	if total > maxStringBytes {
		return 0, NewErrOverflow("append", "resulting string exceeds maximum size")
	}

	v = unshareString(h.ks, key, v)
	buf := append(v.AsBytes(), value...)
	v.setBytes(buf)
	return int64(len(buf)), nil
}

// GetRange implements GETRANGE key start end, Redis-style negative-index
// clamping semantics from t_string.c's getrangeCommand.
func (h *Handle) GetRange(key string, start, end int64) ([]byte, error) {
	if err := nonEmpty("getrange", key); err != nil {
		return nil, err
	}
	v, exists, err := h.stringValueOf("getrange", key, NoExpire)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	buf := v.AsBytes()
	n := int64(len(buf))
	if start < 0 && end < 0 && start > end {
		return nil, nil
	}
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if end >= n {
		end = n - 1
	}
	if start > end || n == 0 {
		return nil, nil
	}
	out := make([]byte, end-start+1)
	copy(out, buf[start:end+1])
	return out, nil
}

// SetRange implements SETRANGE key offset value, returning the resulting
// string length, per t_string.c's setrangeCommand.
func (h *Handle) SetRange(key string, offset int64, value []byte) (int64, error) {
	if err := nonEmpty("setrange", key); err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, NewErrInvalidArg("setrange", "offset must be non-negative")
	}
	v, exists, err := h.stringValueOf("setrange", key, Write)
	if err != nil {
		return 0, err
	}

	if !exists {
		if len(value) == 0 {
			return 0, nil
		}
		if offset+int64(len(value)) > maxStringBytes {
			return 0, NewErrOverflow("setrange", "resulting string exceeds maximum size")
		}
		buf := make([]byte, offset+int64(len(value)))
		copy(buf[offset:], value)
		h.ks.add(key, NewStringValue(buf))
		return int64(len(buf)), nil
	}

	if len(value) == 0 {
		return int64(v.Length()), nil
	}
	if offset+int64(len(value)) > maxStringBytes {
		return 0, NewErrOverflow("setrange", "resulting string exceeds maximum size")
	}

	v = unshareString(h.ks, key, v)
	buf := v.AsBytes()
	if need := offset + int64(len(value)); int64(len(buf)) < need {
		grown := make([]byte, need)
		copy(grown, buf)
		buf = grown
	}
	copy(buf[offset:], value)
	v.setBytes(buf)
	return int64(len(buf)), nil
}

// Strlen implements STRLEN key.
func (h *Handle) Strlen(key string) (int64, error) {
	if err := nonEmpty("strlen", key); err != nil {
		return 0, err
	}
	v, exists, err := h.stringValueOf("strlen", key, NoExpire)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	return int64(v.Length()), nil
}
