package embercache

import "testing"

func TestNewStringValueEncodingChoice(t *testing.T) {
	cases := []struct {
		in   string
		want Encoding
	}{
		{"42", EncInt},
		{"-17", EncInt},
		{"0", EncInt},
		{"007", EncEmbedded}, // leading zero does not round-trip, so not Integer
		{"+5", EncEmbedded},
		{"hello", EncEmbedded},
		{"", EncEmbedded},
	}
	for _, c := range cases {
		v := NewStringValue([]byte(c.in))
		if v.encoding != c.want {
			t.Errorf("NewStringValue(%q) encoding = %v, want %v", c.in, v.encoding, c.want)
		}
	}
}

func TestNewStringValueEmbeddedCutoff(t *testing.T) {
	short := make([]byte, embeddedStringMax)
	for i := range short {
		short[i] = 'a'
	}
	v := NewStringValue(short)
	if v.encoding != EncEmbedded {
		t.Errorf("44-byte string should be Embedded, got %v", v.encoding)
	}

	long := make([]byte, embeddedStringMax+1)
	for i := range long {
		long[i] = 'a'
	}
	v = NewStringValue(long)
	if v.encoding != EncRaw {
		t.Errorf("45-byte string should be Raw, got %v", v.encoding)
	}
}

func TestValueAsBytesAsInt(t *testing.T) {
	v := NewStringValue([]byte("123"))
	if n, ok := v.AsInt(); !ok || n != 123 {
		t.Errorf("AsInt() = %d, %v, want 123, true", n, ok)
	}
	if string(v.AsBytes()) != "123" {
		t.Errorf("AsBytes() = %q, want %q", v.AsBytes(), "123")
	}

	raw := NewStringValue([]byte("not-a-number"))
	if _, ok := raw.AsInt(); ok {
		t.Error("AsInt() on non-numeric string should report false")
	}
}

func TestValueRefcountRetainRelease(t *testing.T) {
	v := NewStringValue([]byte("x"))
	v.Retain()
	if v.refcount != 2 {
		t.Fatalf("refcount after Retain = %d, want 2", v.refcount)
	}
	v.Release()
	if v.refcount != 1 {
		t.Fatalf("refcount after Release = %d, want 1", v.refcount)
	}
	v.Release()
	if v.refcount > 0 {
		t.Fatalf("refcount after final Release = %d, want <= 0", v.refcount)
	}
}

func TestSharedValueRetainReleaseNoOp(t *testing.T) {
	v := NewStringValue([]byte("shared"))
	v = SharedValue(v)
	if !v.IsShared() {
		t.Fatal("SharedValue result should report IsShared")
	}
	v.Retain()
	v.Release()
	v.Release()
	if !v.IsShared() {
		t.Error("Shared sentinel must survive Retain/Release calls")
	}
}

func TestStaticValueRetainPanics(t *testing.T) {
	v := NewStringValue([]byte("static"))
	v = StaticValue(v)
	if !v.IsStatic() {
		t.Fatal("StaticValue result should report IsStatic")
	}
	defer func() {
		if recover() == nil {
			t.Error("Retain on a Static value should panic")
		}
	}()
	v.Retain()
}

func TestUnshareStringPrivateRawReturnsSame(t *testing.T) {
	ks := NewKeyspace(newSharedState(DefaultConfig()), newFakeClock(0), nil)
	v := &Value{typ: TypeString, encoding: EncRaw, refcount: 1, str: []byte("abc")}
	ks.add("k", v)

	got := unshareString(ks, "k", v)
	if got != v {
		t.Error("unshareString on a private Raw value should return the same pointer")
	}
}

func TestUnshareStringSharedMakesPrivateCopy(t *testing.T) {
	ks := NewKeyspace(newSharedState(DefaultConfig()), newFakeClock(0), nil)
	shared := SharedValue(NewStringValue([]byte("abc")))
	ks.add("k", shared)

	got := unshareString(ks, "k", shared)
	if got == shared {
		t.Fatal("unshareString on a Shared value must not return the same pointer")
	}
	if got.refcount != 1 || got.encoding != EncRaw {
		t.Errorf("unshared value should be private Raw, got refcount=%d encoding=%v", got.refcount, got.encoding)
	}
	if string(got.AsBytes()) != "abc" {
		t.Errorf("unshared value content = %q, want %q", got.AsBytes(), "abc")
	}
	if ks.main["k"] != got {
		t.Error("unshareString must install the fresh copy back into the keyspace")
	}
}

func TestValueLength(t *testing.T) {
	s := NewStringValue([]byte("hello"))
	if s.Length() != 5 {
		t.Errorf("Length() of 5-byte string = %d, want 5", s.Length())
	}
	i := NewStringValue([]byte("12345"))
	if i.Length() != 5 {
		t.Errorf("Length() of integer-encoded string = %d, want 5", i.Length())
	}
}
