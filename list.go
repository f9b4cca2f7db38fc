// list.go: the List aggregate-type collaborator (§4.9).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import "container/list"

// listValue is a minimal single-encoding List collaborator backed by
// container/list, standing in for Quicklist/Listpack encoding selection
// (out of the engine's own scope per spec.md §1).
type listValue struct {
	l *list.List
}

func newList() *listValue { return &listValue{l: list.New()} }

func (lv *listValue) free()      { lv.l = nil }
func (lv *listValue) length() int { return lv.l.Len() }

func (lv *listValue) pushLeft(values ...[]byte) {
	for _, v := range values {
		lv.l.PushFront(cloneBytes(v))
	}
}

func (lv *listValue) pushRight(values ...[]byte) {
	for _, v := range values {
		lv.l.PushBack(cloneBytes(v))
	}
}

func (lv *listValue) popLeft() ([]byte, bool) {
	e := lv.l.Front()
	if e == nil {
		return nil, false
	}
	lv.l.Remove(e)
	return e.Value.([]byte), true
}

func (lv *listValue) popRight() ([]byte, bool) {
	e := lv.l.Back()
	if e == nil {
		return nil, false
	}
	lv.l.Remove(e)
	return e.Value.([]byte), true
}

// index returns the element at position i (supporting negative indices
// counted from the end), mirroring LINDEX.
func (lv *listValue) index(i int) ([]byte, bool) {
	n := lv.l.Len()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, false
	}
	e := lv.l.Front()
	for j := 0; j < i; j++ {
		e = e.Next()
	}
	return e.Value.([]byte), true
}

// rangeSlice returns elements [start, stop] inclusive, with Redis-style
// negative-index and clamping semantics, mirroring LRANGE.
func (lv *listValue) rangeSlice(start, stop int) [][]byte {
	n := lv.l.Len()
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
	out := make([][]byte, 0, stop-start+1)
	e := lv.l.Front()
	for j := 0; j < start; j++ {
		e = e.Next()
	}
	for j := start; j <= stop; j++ {
		out = append(out, e.Value.([]byte))
		e = e.Next()
	}
	return out
}

func cloneBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// listOf resolves key to its listValue collaborator, creating one on
// absence when forWrite is set.
func (h *Handle) listOf(key string, forWrite bool) (*listValue, error) {
	v, exists := h.ks.lookup(key, flagsFor(forWrite))
	if !exists {
		if !forWrite {
			return nil, nil
		}
		lv := newList()
		h.ks.add(key, newCollaboratorValue(TypeList, EncListpackList, lv))
		return lv, nil
	}
	if v.typ != TypeList {
		return nil, NewErrInvalidType(key, TypeList.String(), v.typ.String())
	}
	return v.coll.(*listValue), nil
}

// LPush implements LPUSH key value [value ...], returning the list's
// resulting length.
func (h *Handle) LPush(key string, values ...[]byte) (int, error) {
	if err := nonEmpty("lpush", key); err != nil {
		return 0, err
	}
	lv, err := h.listOf(key, true)
	if err != nil {
		return 0, err
	}
	lv.pushLeft(values...)
	return lv.length(), nil
}

// RPush implements RPUSH key value [value ...], returning the list's
// resulting length.
func (h *Handle) RPush(key string, values ...[]byte) (int, error) {
	if err := nonEmpty("rpush", key); err != nil {
		return 0, err
	}
	lv, err := h.listOf(key, true)
	if err != nil {
		return 0, err
	}
	lv.pushRight(values...)
	return lv.length(), nil
}

// LPop implements LPOP key.
func (h *Handle) LPop(key string) ([]byte, error) {
	if err := nonEmpty("lpop", key); err != nil {
		return nil, err
	}
	lv, err := h.listOf(key, false)
	if err != nil {
		return nil, err
	}
	if lv == nil {
		return nil, NewErrKeyNotExist(key)
	}
	v, ok := lv.popLeft()
	if !ok {
		return nil, NewErrKeyNotExist(key)
	}
	return v, nil
}

// RPop implements RPOP key.
func (h *Handle) RPop(key string) ([]byte, error) {
	if err := nonEmpty("rpop", key); err != nil {
		return nil, err
	}
	lv, err := h.listOf(key, false)
	if err != nil {
		return nil, err
	}
	if lv == nil {
		return nil, NewErrKeyNotExist(key)
	}
	v, ok := lv.popRight()
	if !ok {
		return nil, NewErrKeyNotExist(key)
	}
	return v, nil
}

// LLen implements LLEN key.
func (h *Handle) LLen(key string) (int, error) {
	if err := nonEmpty("llen", key); err != nil {
		return 0, err
	}
	lv, err := h.listOf(key, false)
	if err != nil {
		return 0, err
	}
	if lv == nil {
		return 0, nil
	}
	return lv.length(), nil
}

// LRange implements LRANGE key start stop.
func (h *Handle) LRange(key string, start, stop int) ([][]byte, error) {
	if err := nonEmpty("lrange", key); err != nil {
		return nil, err
	}
	lv, err := h.listOf(key, false)
	if err != nil {
		return nil, err
	}
	if lv == nil {
		return nil, nil
	}
	return lv.rangeSlice(start, stop), nil
}

// LIndex implements LINDEX key index.
func (h *Handle) LIndex(key string, index int) ([]byte, error) {
	if err := nonEmpty("lindex", key); err != nil {
		return nil, err
	}
	lv, err := h.listOf(key, false)
	if err != nil {
		return nil, err
	}
	if lv == nil {
		return nil, NewErrKeyNotExist(key)
	}
	v, ok := lv.index(index)
	if !ok {
		return nil, NewErrKeyNotExist(key)
	}
	return v, nil
}
