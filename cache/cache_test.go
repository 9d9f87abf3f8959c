package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

type keyInput struct {
	Price    int64  `json:"price"`
	Category string `json:"category"`
}

func TestKey_DeterministicForEqualInputs(t *testing.T) {
	a, err := Key("eligibility", keyInput{Price: 1000000, Category: "private"})
	if err != nil {
		t.Fatalf("key failed: %v", err)
	}
	b, err := Key("eligibility", keyInput{Price: 1000000, Category: "private"})
	if err != nil {
		t.Fatalf("key failed: %v", err)
	}
	if a != b {
		t.Errorf("equal inputs must derive equal keys: %s vs %s", a, b)
	}
}

func TestKey_DiffersByInputAndKind(t *testing.T) {
	base, _ := Key("eligibility", keyInput{Price: 1000000, Category: "private"})
	other, _ := Key("eligibility", keyInput{Price: 1000001, Category: "private"})
	if base == other {
		t.Error("different inputs must derive different keys")
	}

	crossKind, _ := Key("compliance", keyInput{Price: 1000000, Category: "private"})
	if base == crossKind {
		t.Error("the same payload to different calculators must not collide")
	}
	if !strings.HasPrefix(base, "eligibility:") || !strings.HasPrefix(crossKind, "compliance:") {
		t.Errorf("keys are namespaced by kind: %s, %s", base, crossKind)
	}
}

func TestMemory_SetGetRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte(`{"max_loan":750000}`), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"max_loan":750000}` {
		t.Errorf("value mismatch: %s", got)
	}

	_, ok, err = m.Get(ctx, "absent")
	if err != nil || ok {
		t.Errorf("missing key must be a clean miss: ok=%v err=%v", ok, err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// Pin the clock so expiry is deterministic.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("entry should be live before the TTL elapses")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry should expire after the TTL")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be dropped, %d left", m.Len())
	}
}

func TestMemory_ExpirySweepKeepsRefreshedEntry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// Script the clock per call. Set reads it once; a Get on the expired
	// path reads it twice, the second time under the write lock. The third
	// reading lands back inside the TTL, which is what the entry looks like
	// when a concurrent Set refreshed the key between the two lock
	// acquisitions - the sweep must not drop it.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	readings := []time.Time{
		base,                       // Set: expiry at base+1m
		base.Add(2 * time.Minute),  // Get, read phase: looks expired
		base.Add(30 * time.Second), // Get, write-lock re-check: live again
	}
	calls := 0
	m.now = func() time.Time {
		reading := readings[len(readings)-1]
		if calls < len(readings) {
			reading = readings[calls]
		}
		calls++
		return reading
	}

	if err := m.Set(ctx, "k", []byte("fresh"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || string(got) != "fresh" {
		t.Fatalf("refreshed entry must survive the sweep: ok=%v value=%q", ok, got)
	}
	if m.Len() != 1 {
		t.Errorf("entry dropped by a stale expiry decision, %d left", m.Len())
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	original := []byte("immutable")
	if err := m.Set(ctx, "k", original, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	original[0] = 'X'

	got, _, _ := m.Get(ctx, "k")
	if string(got) != "immutable" {
		t.Errorf("cache must not alias caller buffers: %s", got)
	}
	got[0] = 'Y'

	again, _, _ := m.Get(ctx, "k")
	if string(again) != "immutable" {
		t.Errorf("cache must not alias returned buffers: %s", again)
	}
}
