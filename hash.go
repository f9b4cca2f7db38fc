// hash.go: the Hash aggregate-type collaborator (§4.9).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// hashValue is a minimal single-encoding Hash collaborator: a plain Go map
// from field name to value bytes. spec.md frames Listpack/HashTable
// encoding selection as out of the engine's own scope; this supplies the
// one working encoding the façade's hash commands need to operate against.
type hashValue struct {
	fields map[string][]byte
}

func newHash() *hashValue { return &hashValue{fields: make(map[string][]byte)} }

func (h *hashValue) free()      { h.fields = nil }
func (h *hashValue) length() int { return len(h.fields) }

func (h *hashValue) set(field string, value []byte) bool {
	_, existed := h.fields[field]
	cp := make([]byte, len(value))
	copy(cp, value)
	h.fields[field] = cp
	return !existed
}

func (h *hashValue) get(field string) ([]byte, bool) {
	v, ok := h.fields[field]
	return v, ok
}

func (h *hashValue) del(field string) bool {
	_, ok := h.fields[field]
	delete(h.fields, field)
	return ok
}

func (h *hashValue) exists(field string) bool {
	_, ok := h.fields[field]
	return ok
}

func (h *hashValue) all() map[string][]byte {
	out := make(map[string][]byte, len(h.fields))
	for k, v := range h.fields {
		out[k] = v
	}
	return out
}

// hashOf resolves key to its hashValue collaborator, creating one on
// absence when forWrite is set; it is the façade's single entry point for
// type-checked access to a Hash value.
func (h *Handle) hashOf(key string, forWrite bool) (*hashValue, error) {
	v, exists := h.ks.lookup(key, flagsFor(forWrite))
	if !exists {
		if !forWrite {
			return nil, nil
		}
		hv := newHash()
		h.ks.add(key, newCollaboratorValue(TypeHash, EncListpackHash, hv))
		return hv, nil
	}
	if v.typ != TypeHash {
		return nil, NewErrInvalidType(key, TypeHash.String(), v.typ.String())
	}
	return v.coll.(*hashValue), nil
}

func flagsFor(forWrite bool) LookupFlags {
	if forWrite {
		return Write
	}
	return LookupNone
}

// HSet implements HSET key field value, reporting whether field is new.
func (h *Handle) HSet(key, field string, value []byte) (bool, error) {
	if err := nonEmpty("hset", key); err != nil {
		return false, err
	}
	hv, err := h.hashOf(key, true)
	if err != nil {
		return false, err
	}
	return hv.set(field, value), nil
}

// HGet implements HGET key field.
func (h *Handle) HGet(key, field string) ([]byte, error) {
	if err := nonEmpty("hget", key); err != nil {
		return nil, err
	}
	hv, err := h.hashOf(key, false)
	if err != nil {
		return nil, err
	}
	if hv == nil {
		return nil, NewErrKeyNotExist(key)
	}
	v, ok := hv.get(field)
	if !ok {
		return nil, NewErrKeyNotExist(key)
	}
	return v, nil
}

// HDel implements HDEL key field, reporting whether field was present.
func (h *Handle) HDel(key, field string) (bool, error) {
	if err := nonEmpty("hdel", key); err != nil {
		return false, err
	}
	hv, err := h.hashOf(key, false)
	if err != nil {
		return false, err
	}
	if hv == nil {
		return false, nil
	}
	return hv.del(field), nil
}

// HGetAll implements HGETALL key.
func (h *Handle) HGetAll(key string) (map[string][]byte, error) {
	if err := nonEmpty("hgetall", key); err != nil {
		return nil, err
	}
	hv, err := h.hashOf(key, false)
	if err != nil {
		return nil, err
	}
	if hv == nil {
		return nil, nil
	}
	return hv.all(), nil
}

// HLen implements HLEN key.
func (h *Handle) HLen(key string) (int, error) {
	if err := nonEmpty("hlen", key); err != nil {
		return 0, err
	}
	hv, err := h.hashOf(key, false)
	if err != nil {
		return 0, err
	}
	if hv == nil {
		return 0, nil
	}
	return hv.length(), nil
}

// HExists implements HEXISTS key field.
func (h *Handle) HExists(key, field string) (bool, error) {
	if err := nonEmpty("hexists", key); err != nil {
		return false, err
	}
	hv, err := h.hashOf(key, false)
	if err != nil {
		return false, err
	}
	if hv == nil {
		return false, nil
	}
	return hv.exists(field), nil
}
