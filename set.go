// set.go: the Set aggregate-type collaborator (§4.9).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// setValue is a minimal single-encoding Set collaborator: a plain Go
// membership map, standing in for HashTable/IntSet/Listpack encoding
// selection (out of the engine's own scope per spec.md §1).
type setValue struct {
	members map[string]struct{}
}

func newSet() *setValue { return &setValue{members: make(map[string]struct{})} }

func (s *setValue) free()      { s.members = nil }
func (s *setValue) length() int { return len(s.members) }

func (s *setValue) add(member string) bool {
	_, existed := s.members[member]
	s.members[member] = struct{}{}
	return !existed
}

func (s *setValue) remove(member string) bool {
	_, existed := s.members[member]
	delete(s.members, member)
	return existed
}

func (s *setValue) isMember(member string) bool {
	_, ok := s.members[member]
	return ok
}

func (s *setValue) all() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}

// setOf resolves key to its setValue collaborator, creating one on absence
// when forWrite is set.
func (h *Handle) setOf(key string, forWrite bool) (*setValue, error) {
	v, exists := h.ks.lookup(key, flagsFor(forWrite))
	if !exists {
		if !forWrite {
			return nil, nil
		}
		sv := newSet()
		h.ks.add(key, newCollaboratorValue(TypeSet, EncListpackSet, sv))
		return sv, nil
	}
	if v.typ != TypeSet {
		return nil, NewErrInvalidType(key, TypeSet.String(), v.typ.String())
	}
	return v.coll.(*setValue), nil
}

// SAdd implements SADD key member, reporting whether member was new.
func (h *Handle) SAdd(key, member string) (bool, error) {
	if err := nonEmpty("sadd", key); err != nil {
		return false, err
	}
	sv, err := h.setOf(key, true)
	if err != nil {
		return false, err
	}
	return sv.add(member), nil
}

// SRem implements SREM key member, reporting whether member was present.
func (h *Handle) SRem(key, member string) (bool, error) {
	if err := nonEmpty("srem", key); err != nil {
		return false, err
	}
	sv, err := h.setOf(key, false)
	if err != nil {
		return false, err
	}
	if sv == nil {
		return false, nil
	}
	return sv.remove(member), nil
}

// SIsMember implements SISMEMBER key member.
func (h *Handle) SIsMember(key, member string) (bool, error) {
	if err := nonEmpty("sismember", key); err != nil {
		return false, err
	}
	sv, err := h.setOf(key, false)
	if err != nil {
		return false, err
	}
	if sv == nil {
		return false, nil
	}
	return sv.isMember(member), nil
}

// SMembers implements SMEMBERS key.
func (h *Handle) SMembers(key string) ([]string, error) {
	if err := nonEmpty("smembers", key); err != nil {
		return nil, err
	}
	sv, err := h.setOf(key, false)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, nil
	}
	return sv.all(), nil
}

// SCard implements SCARD key.
func (h *Handle) SCard(key string) (int, error) {
	if err := nonEmpty("scard", key); err != nil {
		return 0, err
	}
	sv, err := h.setOf(key, false)
	if err != nil {
		return 0, err
	}
	if sv == nil {
		return 0, nil
	}
	return sv.length(), nil
}
