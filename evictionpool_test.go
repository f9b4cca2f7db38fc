package embercache

import "testing"

func TestEvictionPoolInsertMaintainsAscendingOrder(t *testing.T) {
	p := &evictionPool{}
	p.insert("a", 50)
	p.insert("b", 10)
	p.insert("c", 100)

	var prev uint32
	seen := 0
	for i, slot := range p.slots {
		if slot.key == "" {
			continue
		}
		seen++
		if i > 0 && slot.idle < prev {
			t.Errorf("pool not ascending at slot %d: idle %d follows %d", i, slot.idle, prev)
		}
		prev = slot.idle
	}
	if seen != 3 {
		t.Fatalf("expected 3 populated slots, got %d", seen)
	}
}

func TestEvictionPoolNextReturnsWorstFirst(t *testing.T) {
	ks, _ := newTestKeyspace()
	ks.add("low", NewStringValue([]byte("v")))
	ks.add("high", NewStringValue([]byte("v")))

	p := &evictionPool{}
	p.insert("low", 10)
	p.insert("high", 500)

	key, ok := p.next(ks, PolicyLRU|PolicyAllKeys)
	if !ok || key != "high" {
		t.Errorf("next() = %q, %v, want %q, true (highest idle first)", key, ok, "high")
	}
}

func TestEvictionPoolNextSkipsGhostEntries(t *testing.T) {
	ks, _ := newTestKeyspace()
	ks.add("live", NewStringValue([]byte("v")))
	// "ghost" was never added to ks.main.

	p := &evictionPool{}
	p.insert("ghost", 500)
	p.insert("live", 10)

	key, ok := p.next(ks, PolicyLRU|PolicyAllKeys)
	if !ok || key != "live" {
		t.Errorf("next() should skip the ghost entry and return %q, got %q, %v", "live", key, ok)
	}
}

func TestEvictionPoolIsLiveVolatileScopeRequiresTTL(t *testing.T) {
	ks, clock := newTestKeyspace()
	ks.add("no-ttl", NewStringValue([]byte("v")))
	ks.add("with-ttl", NewStringValue([]byte("v")))
	ks.setExpire("with-ttl", clock.nanos/1e6+60000)

	p := &evictionPool{}
	if p.isLive(ks, PolicyVolatileTTL, "no-ttl") {
		t.Error("volatile scope should not consider a TTL-less key live")
	}
	if !p.isLive(ks, PolicyVolatileTTL, "with-ttl") {
		t.Error("volatile scope should consider a key with a TTL live")
	}
}

func TestEvictionPoolFullInsertKeepsWorseCandidate(t *testing.T) {
	p := &evictionPool{}
	for i := 0; i < evictionPoolSize; i++ {
		p.insert(string(rune('a'+i)), uint32(i*10))
	}
	// Pool is full with ascending idles [0,10,...,150]; a candidate above
	// the current maximum is the most evictable one seen, so it takes the
	// top slot and the current best (index 0, idle 0) is ejected.
	p.insert("at-max", 9999)

	found := false
	for _, s := range p.slots {
		if s.key == "at-max" {
			found = true
		}
	}
	if !found {
		t.Error("a candidate above the pool's current maximum idle should displace the lowest-idle slot when the pool is full")
	}
}

func TestSampleForEvictionVolatileTTLFavorsSoonestExpiry(t *testing.T) {
	ks, clock := newTestKeyspace()
	ks.add("soon", NewStringValue([]byte("v")))
	ks.setExpire("soon", clock.nanos/1e6+1000)
	ks.add("later", NewStringValue([]byte("v")))
	ks.setExpire("later", clock.nanos/1e6+100000)

	idles := make(map[string]uint32)
	for i := 0; i < 64 && len(idles) < 2; i++ {
		key, idle, ok := ks.sampleForEviction(PolicyVolatileTTL)
		if !ok {
			t.Fatal("sampleForEviction should find a candidate")
		}
		idles[key] = idle
	}
	if len(idles) != 2 || idles["soon"] <= idles["later"] {
		t.Errorf("idle scores = %v, want both keys sampled and soon > later", idles)
	}
}
