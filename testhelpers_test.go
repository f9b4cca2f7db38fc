// testhelpers_test.go: shared test fixtures.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// fakeClock is a deterministic TimeProvider for tests that need explicit
// control over the LRU clock and LFU decay timing without sleeping.
type fakeClock struct {
	nanos int64
}

func newFakeClock(startNanos int64) *fakeClock { return &fakeClock{nanos: startNanos} }

func (c *fakeClock) Now() int64 { return c.nanos }

func (c *fakeClock) Advance(d int64) { c.nanos += d }

func newTestHandle(cfg Config) (*Handle, *fakeClock) {
	clock := newFakeClock(1_700_000_000 * 1_000_000_000)
	cfg.TimeProvider = clock
	return NewHandle(cfg), clock
}
