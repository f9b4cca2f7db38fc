package embercache

import "testing"

func TestHSetHGetHDel(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())

	isNew, err := h.HSet("user:1", "name", []byte("alice"))
	if err != nil || !isNew {
		t.Fatalf("HSet first write = %v, %v, want true, nil", isNew, err)
	}
	isNew, err = h.HSet("user:1", "name", []byte("bob"))
	if err != nil || isNew {
		t.Fatalf("HSet overwrite = %v, %v, want false, nil", isNew, err)
	}

	v, err := h.HGet("user:1", "name")
	if err != nil || string(v) != "bob" {
		t.Fatalf("HGet = %q, %v, want %q, nil", v, err, "bob")
	}

	_, err = h.HGet("user:1", "missing-field")
	if !IsKeyNotExist(err) {
		t.Errorf("HGet on missing field should be key-not-exist, got %v", err)
	}

	removed, err := h.HDel("user:1", "name")
	if err != nil || !removed {
		t.Fatalf("HDel = %v, %v, want true, nil", removed, err)
	}
	removed, err = h.HDel("user:1", "name")
	if err != nil || removed {
		t.Fatalf("HDel again = %v, %v, want false, nil", removed, err)
	}
}

func TestHGetAllHLenHExists(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.HSet("user:1", "name", []byte("alice"))
	h.HSet("user:1", "age", []byte("30"))

	all, err := h.HGetAll("user:1")
	if err != nil || len(all) != 2 {
		t.Fatalf("HGetAll = %v, %v, want 2 fields", all, err)
	}

	n, err := h.HLen("user:1")
	if err != nil || n != 2 {
		t.Fatalf("HLen = %d, %v, want 2, nil", n, err)
	}

	exists, err := h.HExists("user:1", "name")
	if err != nil || !exists {
		t.Fatalf("HExists(name) = %v, %v, want true, nil", exists, err)
	}
	exists, err = h.HExists("user:1", "missing")
	if err != nil || exists {
		t.Fatalf("HExists(missing) = %v, %v, want false, nil", exists, err)
	}
}

func TestHashOnAbsentKeyReadsReportZeroValues(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	n, err := h.HLen("missing")
	if err != nil || n != 0 {
		t.Errorf("HLen on missing key = %d, %v, want 0, nil", n, err)
	}
	all, err := h.HGetAll("missing")
	if err != nil || all != nil {
		t.Errorf("HGetAll on missing key = %v, %v, want nil, nil", all, err)
	}
}

func TestHashWrongTypeErrors(t *testing.T) {
	h, _ := newTestHandle(DefaultConfig())
	h.Set("k", []byte("v"), SetOptions{})
	_, err := h.HSet("k", "f", []byte("v"))
	if !IsInvalidType(err) {
		t.Errorf("HSet against a string key should be invalid-type, got %v", err)
	}
}
