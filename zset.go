// zset.go: the Sorted Set aggregate-type collaborator (§4.9).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import "sort"

// zsetValue is a minimal single-encoding Sorted Set collaborator: a
// member→score map plus a slice kept sorted on mutation, standing in for
// Skiplist/Listpack encoding selection (out of the engine's own scope per
// spec.md §1).
type zsetValue struct {
	scores  map[string]float64
	ordered []string // kept sorted by (score, member) ascending
}

func newZSet() *zsetValue {
	return &zsetValue{scores: make(map[string]float64)}
}

func (z *zsetValue) free() {
	z.scores = nil
	z.ordered = nil
}

func (z *zsetValue) length() int { return len(z.scores) }

// add inserts or updates member's score, reporting whether member is new.
func (z *zsetValue) add(member string, score float64) bool {
	_, existed := z.scores[member]
	z.scores[member] = score
	z.reorder()
	return !existed
}

func (z *zsetValue) score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

func (z *zsetValue) remove(member string) bool {
	_, existed := z.scores[member]
	if existed {
		delete(z.scores, member)
		z.reorder()
	}
	return existed
}

// rangeByIndex returns members [start, stop] inclusive in ascending score
// order, with Redis-style negative-index and clamping semantics (ZRANGE).
func (z *zsetValue) rangeByIndex(start, stop int) []string {
	n := len(z.ordered)
	if n == 0 {
		return nil
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil
	}
	out := make([]string, stop-start+1)
	copy(out, z.ordered[start:stop+1])
	return out
}

func (z *zsetValue) reorder() {
	z.ordered = make([]string, 0, len(z.scores))
	for m := range z.scores {
		z.ordered = append(z.ordered, m)
	}
	sort.Slice(z.ordered, func(i, j int) bool {
		a, b := z.ordered[i], z.ordered[j]
		if z.scores[a] != z.scores[b] {
			return z.scores[a] < z.scores[b]
		}
		return a < b
	})
}

// zsetOf resolves key to its zsetValue collaborator, creating one on
// absence when forWrite is set.
func (h *Handle) zsetOf(key string, forWrite bool) (*zsetValue, error) {
	v, exists := h.ks.lookup(key, flagsFor(forWrite))
	if !exists {
		if !forWrite {
			return nil, nil
		}
		zv := newZSet()
		h.ks.add(key, newCollaboratorValue(TypeSortedSet, EncListpackZSet, zv))
		return zv, nil
	}
	if v.typ != TypeSortedSet {
		return nil, NewErrInvalidType(key, TypeSortedSet.String(), v.typ.String())
	}
	return v.coll.(*zsetValue), nil
}

// ZAdd implements ZADD key score member, reporting whether member was new.
func (h *Handle) ZAdd(key string, score float64, member string) (bool, error) {
	if err := nonEmpty("zadd", key); err != nil {
		return false, err
	}
	zv, err := h.zsetOf(key, true)
	if err != nil {
		return false, err
	}
	return zv.add(member, score), nil
}

// ZScore implements ZSCORE key member.
func (h *Handle) ZScore(key, member string) (float64, error) {
	if err := nonEmpty("zscore", key); err != nil {
		return 0, err
	}
	zv, err := h.zsetOf(key, false)
	if err != nil {
		return 0, err
	}
	if zv == nil {
		return 0, NewErrKeyNotExist(key)
	}
	score, ok := zv.score(member)
	if !ok {
		return 0, NewErrKeyNotExist(key)
	}
	return score, nil
}

// ZRem implements ZREM key member, reporting whether member was present.
func (h *Handle) ZRem(key, member string) (bool, error) {
	if err := nonEmpty("zrem", key); err != nil {
		return false, err
	}
	zv, err := h.zsetOf(key, false)
	if err != nil {
		return false, err
	}
	if zv == nil {
		return false, nil
	}
	return zv.remove(member), nil
}

// ZRange implements ZRANGE key start stop (by index, ascending score).
func (h *Handle) ZRange(key string, start, stop int) ([]string, error) {
	if err := nonEmpty("zrange", key); err != nil {
		return nil, err
	}
	zv, err := h.zsetOf(key, false)
	if err != nil {
		return nil, err
	}
	if zv == nil {
		return nil, nil
	}
	return zv.rangeByIndex(start, stop), nil
}

// ZCard implements ZCARD key.
func (h *Handle) ZCard(key string) (int, error) {
	if err := nonEmpty("zcard", key); err != nil {
		return 0, err
	}
	zv, err := h.zsetOf(key, false)
	if err != nil {
		return 0, err
	}
	if zv == nil {
		return 0, nil
	}
	return zv.length(), nil
}
