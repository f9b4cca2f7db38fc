package embercache

import "testing"

func TestPopcount(t *testing.T) {
	cases := []struct {
		buf  []byte
		want int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0xFF}, 8},
		{[]byte{0x0F}, 4},
		{[]byte{0x00, 0x0F}, 4},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 72}, // 9 bytes, crosses word boundary
	}
	for _, c := range cases {
		if got := popcount(c.buf); got != c.want {
			t.Errorf("popcount(%v) = %d, want %d", c.buf, got, c.want)
		}
	}
}

func TestSetBitGetBitRoundTrip(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())

	old, err := h.SetBit("k", 7, 1)
	if err != nil || old != 0 {
		t.Fatalf("SetBit first write = %d, %v, want 0, nil", old, err)
	}
	bit, err := h.GetBit("k", 7)
	if err != nil || bit != 1 {
		t.Fatalf("GetBit after SetBit = %d, %v, want 1, nil", bit, err)
	}

	old, err = h.SetBit("k", 7, 0)
	if err != nil || old != 1 {
		t.Fatalf("SetBit overwrite previous value = %d, %v, want 1, nil", old, err)
	}
}

func TestGetBitBeyondLengthIsZero(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.SetBit("k", 0, 1)
	bit, err := h.GetBit("k", 1000)
	if err != nil || bit != 0 {
		t.Errorf("GetBit beyond stored length = %d, %v, want 0, nil", bit, err)
	}
}

func TestGetBitAbsentKeyIsZero(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	bit, err := h.GetBit("missing", 0)
	if err != nil || bit != 0 {
		t.Errorf("GetBit on absent key = %d, %v, want 0, nil", bit, err)
	}
}

func TestSetBitRejectsInvalidValue(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	if _, err := h.SetBit("k", 0, 2); CodeOf(err) != CodeInvalidArg {
		t.Errorf("SetBit with value=2 should be CodeInvalidArg, got %v", CodeOf(err))
	}
	if _, err := h.SetBit("k", -1, 1); CodeOf(err) != CodeInvalidArg {
		t.Errorf("SetBit with negative offset should be CodeInvalidArg, got %v", CodeOf(err))
	}
}

func TestBitCountWholeString(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0xFF, 0x0F}, SetOptions{})
	n, err := h.BitCount("k", 0, -1, false, false)
	if err != nil || n != 12 {
		t.Errorf("BitCount whole string = %d, %v, want 12, nil", n, err)
	}
}

func TestBitCountByteRange(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0xFF, 0x00, 0xFF}, SetOptions{})
	n, err := h.BitCount("k", 1, 1, false, true)
	if err != nil || n != 0 {
		t.Errorf("BitCount byte range [1,1] = %d, %v, want 0, nil", n, err)
	}
	n, err = h.BitCount("k", 0, -1, false, true)
	if err != nil || n != 16 {
		t.Errorf("BitCount byte range [0,-1] = %d, %v, want 16, nil", n, err)
	}
}

func TestBitCountBitRange(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0x00, 0x0F}, SetOptions{}) // bits 12-15 set
	n, err := h.BitCount("k", 12, 15, true, true)
	if err != nil || n != 4 {
		t.Errorf("BitCount bit range [12,15] = %d, %v, want 4, nil", n, err)
	}
	n, err = h.BitCount("k", 0, 11, true, true)
	if err != nil || n != 0 {
		t.Errorf("BitCount bit range [0,11] = %d, %v, want 0, nil", n, err)
	}
}

func TestBitCountAbsentKeyIsKeyNotExist(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	n, err := h.BitCount("missing", 0, -1, false, false)
	if n != 0 || !IsKeyNotExist(err) {
		t.Errorf("BitCount on absent key = %d, %v, want 0, key-not-exist", n, err)
	}
}

func TestBitPosFindsFirstSetBit(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0x00, 0x0F}, SetOptions{})
	pos, err := h.BitPos("k", 1, 0, -1, true, StartEndOffset)
	if err != nil || pos != 12 {
		t.Errorf("BitPos(bit=1) = %d, %v, want 12, nil", pos, err)
	}
}

func TestBitPosFindsFirstZeroBit(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0xFF, 0xF0}, SetOptions{})
	pos, err := h.BitPos("k", 0, 0, -1, true, StartEndOffset)
	if err != nil || pos != 12 {
		t.Errorf("BitPos(bit=0) = %d, %v, want 12, nil", pos, err)
	}
}

func TestBitPosZeroUnboundedPastEndOfAllOnesString(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0xFF, 0xFF}, SetOptions{})
	pos, err := h.BitPos("k", 0, 0, -1, false, NoOffset)
	if err != nil || pos != 16 {
		t.Errorf("BitPos(bit=0) on all-ones with no explicit end = %d, %v, want 16, nil", pos, err)
	}
}

func TestBitPosAbsentKeyIsKeyNotExist(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	pos, err := h.BitPos("missing", 0, 0, -1, false, NoOffset)
	if pos != -1 || !IsKeyNotExist(err) {
		t.Errorf("BitPos on absent key = %d, %v, want -1, key-not-exist", pos, err)
	}
}

func TestBitPosEmptyRangeIsMinusOneNotZero(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{}, SetOptions{})

	pos, err := h.BitPos("k", 0, 0, -1, false, NoOffset)
	if pos != -1 || !IsKeyNotExist(err) {
		t.Errorf("BitPos(bit=0) on an existing empty string = %d, %v, want -1, key-not-exist", pos, err)
	}

	pos, err = h.BitPos("k", 1, 0, -1, false, NoOffset)
	if pos != -1 || !IsKeyNotExist(err) {
		t.Errorf("BitPos(bit=1) on an existing empty string = %d, %v, want -1, key-not-exist", pos, err)
	}
}

func TestBitPosRejectsInvalidBit(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte{0x00}, SetOptions{})
	if _, err := h.BitPos("k", 2, 0, -1, true, StartEndOffset); CodeOf(err) != CodeInvalidArg {
		t.Errorf("BitPos with bit=2 should be CodeInvalidArg, got %v", CodeOf(err))
	}
}

func TestScanBitRangeSkipsUniformBytes(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01}
	pos, found := scanBitRange(buf, 0, 23, 1)
	if !found || pos != 23 {
		t.Errorf("scanBitRange = %d, %v, want 23, true", pos, found)
	}
}
