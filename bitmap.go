// bitmap.go: the bitmap sub-engine (C7).
//
// Ported from original_source/bitops.c's redisPopcount, redisBitpos,
// RcSetBit, RcGetBit, RcBitCount and RcBitPos. Bits are addressed
// big-endian within each byte: bit index i maps to byte i>>3 and in-byte
// position 7-(i&7) — the most significant bit of a byte is bit 0.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import "math/bits"

// bitsInByte is the 256-entry popcount table redisPopcount uses for the
// unaligned prefix/suffix bytes of a buffer.
var bitsInByte = func() [256]uint8 {
	var t [256]uint8
	for i := range t {
		t[i] = uint8(bits.OnesCount8(uint8(i)))
	}
	return t
}()

// popcount counts set bits across buf using math/bits.OnesCount64 (the
// Go-idiomatic drop-in for the classic SWAR 28-byte unrolled loop bitops.c
// hand-rolls) over whole 8-byte words from the start of buf, and the table
// for the trailing bytes that do not fill a word.
func popcount(buf []byte) int64 {
	var n int64
	i := 0
	for ; i+8 <= len(buf); i += 8 {
		word := uint64(buf[i]) | uint64(buf[i+1])<<8 | uint64(buf[i+2])<<16 | uint64(buf[i+3])<<24 |
			uint64(buf[i+4])<<32 | uint64(buf[i+5])<<40 | uint64(buf[i+6])<<48 | uint64(buf[i+7])<<56
		n += int64(bits.OnesCount64(word))
	}
	for ; i < len(buf); i++ {
		n += int64(bitsInByte[buf[i]])
	}
	return n
}

// bitAtByte reads the bit at bit-position pos (0 = MSB) out of a single
// byte.
func bitAtByte(b byte, pos uint) int {
	return int((b >> (7 - pos)) & 1)
}

// setBitAtByte returns b with its bit at pos set to val (0 or 1).
func setBitAtByte(b byte, pos uint, val int) byte {
	mask := byte(1) << (7 - pos)
	if val != 0 {
		return b | mask
	}
	return b &^ mask
}

// SetBit implements setbit(key, offset, value): looks up for write, creates
// an empty Raw string if key is absent, zero-extends it so the target byte
// exists, and sets or clears the bit. It returns the bit's previous value
// and reports the error taxonomy of §4.7/§6.
func (h *Handle) SetBit(key string, offset int64, value int) (int, error) {
	if value != 0 && value != 1 {
		return 0, NewErrInvalidArg("setbit", "value must be 0 or 1")
	}
	if offset < 0 {
		return 0, NewErrInvalidArg("setbit", "offset must be non-negative")
	}
	byteLen := offset/8 + 1
	if byteLen > maxStringBytes {
		return 0, NewErrOverflow("setbit", "offset exceeds maximum string size")
	}

	v, exists := h.ks.lookup(key, Write)
	if exists && v.typ != TypeString {
		return 0, NewErrInvalidType(key, TypeString.String(), v.typ.String())
	}

	var buf []byte
	if !exists {
		buf = make([]byte, byteLen)
	} else {
		v = unshareString(h.ks, key, v)
		buf = v.AsBytes()
		if int64(len(buf)) < byteLen {
			grown := make([]byte, byteLen)
			copy(grown, buf)
			buf = grown
		}
	}

	bytePos := offset / 8
	bitPos := uint(offset % 8)
	old := bitAtByte(buf[bytePos], bitPos)
	buf[bytePos] = setBitAtByte(buf[bytePos], bitPos, value)

	if !exists {
		h.ks.add(key, &Value{typ: TypeString, encoding: EncRaw, refcount: 1, str: buf})
	} else {
		v.setBytes(buf)
	}
	return old, nil
}

// GetBit implements getbit(key, offset): returns 0 for an absent key or an
// offset beyond the stored length.
func (h *Handle) GetBit(key string, offset int64) (int, error) {
	if offset < 0 {
		return 0, NewErrInvalidArg("getbit", "offset must be non-negative")
	}
	v, exists := h.ks.lookup(key, NoExpire)
	if !exists {
		return 0, nil
	}
	if v.typ != TypeString {
		return 0, NewErrInvalidType(key, TypeString.String(), v.typ.String())
	}
	buf := v.AsBytes()
	bytePos := offset / 8
	if bytePos >= int64(len(buf)) {
		return 0, nil
	}
	return bitAtByte(buf[bytePos], uint(offset%8)), nil
}

// bitRangeMode selects byte-indexed or bit-indexed range interpretation for
// BitCount/BitPos.
type bitRangeMode int

const (
	rangeWholeString bitRangeMode = iota
	rangeBytes
	rangeBits
)

// normalizeRange resolves negative start/end indices (counted from the
// string's end) into clamped, inclusive bounds over a buffer of length n,
// in whichever unit mode selects.
func normalizeRange(n int64, start, end int64, mode bitRangeMode) (int64, int64, bool) {
	total := n
	if mode == rangeBits {
		total = n * 8
	}
	if total == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += total
	}
	if end < 0 {
		end += total
	}
	if start < 0 {
		start = 0
	}
	if end >= total {
		end = total - 1
	}
	if start > end || start >= total {
		return 0, 0, false
	}
	return start, end, true
}

// BitCount implements bitcount(key, start, end, isbit, haveOffset).
func (h *Handle) BitCount(key string, start, end int64, isbit, haveOffset bool) (int64, error) {
	v, exists := h.ks.lookup(key, NoExpire)
	if !exists {
		return 0, NewErrKeyNotExist(key)
	}
	if v.typ != TypeString {
		return 0, NewErrInvalidType(key, TypeString.String(), v.typ.String())
	}
	buf := v.AsBytes()
	if !haveOffset {
		return popcount(buf), nil
	}

	mode := rangeBytes
	if isbit {
		mode = rangeBits
	}
	s, e, ok := normalizeRange(int64(len(buf)), start, end, mode)
	if !ok {
		return 0, nil
	}

	if mode == rangeBytes {
		return popcount(buf[s : e+1]), nil
	}

	return bitRangePopcount(buf, s, e), nil
}

// bitRangePopcount counts set bits in the closed bit range [startBit,
// endBit] by converting to a byte window, popcounting the enclosed full
// bytes, and subtracting the popcount of the out-of-range bits in the two
// boundary bytes via negative masks, mirroring RcBitCount.
func bitRangePopcount(buf []byte, startBit, endBit int64) int64 {
	firstByte := startBit / 8
	lastByte := endBit / 8

	if firstByte == lastByte {
		b := buf[firstByte]
		n := int64(0)
		for pos := startBit % 8; pos <= endBit%8; pos++ {
			n += int64(bitAtByte(b, uint(pos)))
		}
		return n
	}

	total := popcount(buf[firstByte : lastByte+1])

	firstByteNegMask := byte(0xFF << uint(8-(startBit%8)))
	total -= int64(bitsInByte[buf[firstByte]&firstByteNegMask])

	lastByteNegMask := byte((1 << uint(7-(endBit%8))) - 1)
	total -= int64(bitsInByte[buf[lastByte]&lastByteNegMask])

	return total
}

// OffsetStatus distinguishes BitPos's three calling shapes.
type OffsetStatus int

const (
	NoOffset OffsetStatus = iota
	StartOffset
	StartEndOffset
)

// BitPos implements bitpos(key, bit, start, end, isbit, offsetStatus).
func (h *Handle) BitPos(key string, bit int, start, end int64, isbit bool, offsetStatus OffsetStatus) (int64, error) {
	if bit != 0 && bit != 1 {
		return 0, NewErrInvalidArg("bitpos", "bit must be 0 or 1")
	}
	v, exists := h.ks.lookup(key, NoExpire)
	if !exists {
		return -1, NewErrKeyNotExist(key)
	}
	if v.typ != TypeString {
		return 0, NewErrInvalidType(key, TypeString.String(), v.typ.String())
	}
	buf := v.AsBytes()

	n := int64(len(buf))
	endGiven := offsetStatus == StartEndOffset

	var s, e int64
	var ok bool
	mode := rangeBytes
	if isbit {
		mode = rangeBits
	}
	if offsetStatus == NoOffset {
		s, e, ok = 0, n*8-1, n > 0
	} else {
		s, e, ok = normalizeRange(n, start, end, mode)
		if ok && mode == rangeBytes {
			// scanBitRange takes bit indices; widen the byte range.
			s, e = s*8, e*8+7
		}
	}
	if !ok {
		// The computed range is empty (e.g. an existing zero-length string,
		// or an out-of-range explicit start/end): no scan ever happened, so
		// this is never the synthetic zero-padded-tail case below.
		return -1, NewErrKeyNotExist(key)
	}

	pos, found := scanBitRange(buf, s, e, bit)
	if !found {
		if bit == 0 && !endGiven {
			// Unbounded search for a 0: the string is infinitely
			// zero-padded on the right, so the first bit past the
			// stored range is always a match.
			return e + 1, nil
		}
		return -1, NewErrKeyNotExist(key)
	}
	return pos, nil
}

// scanBitRange scans the closed bit range [startBit, endBit] of buf for the
// first occurrence of bit. Whole bytes that are uniformly 0x00 (searching
// for a 1) or 0xFF (searching for a 0) are skipped without a per-bit check,
// the byte-grain analog of redisBitpos's word-skip fast path; the boundary
// and non-uniform bytes fall back to a bit-by-bit scan.
func scanBitRange(buf []byte, startBit, endBit int64, bit int) (int64, bool) {
	skipByte := byte(0x00)
	if bit == 0 {
		skipByte = 0xFF
	}
	for i := startBit; i <= endBit; {
		bytePos := i / 8
		if int64(len(buf)) <= bytePos {
			return 0, false
		}
		if i%8 == 0 && i+7 <= endBit && buf[bytePos] == skipByte {
			i += 8
			continue
		}
		if bitAtByte(buf[bytePos], uint(i%8)) == bit {
			return i, true
		}
		i++
	}
	return 0, false
}

// maxStringBytes is the 512 MiB single-string-value limit from §6.
const maxStringBytes = 512 * 1024 * 1024
