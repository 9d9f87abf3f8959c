package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(kind string) CalculationRecord {
	return CalculationRecord{
		ID:             uuid.New().String(),
		Kind:           kind,
		InputJSON:      `{"property":{"price":1000000}}`,
		OutputJSON:     `{"max_loan":750000}`,
		LimitingFactor: "ltv",
		ReasonCodes:    []string{"ltv_binding", "ltv_first_loan"},
	}
}

func TestStore_SaveAndGetCalculation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(KindEligibility)
	if err := store.SaveCalculation(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.GetCalculation(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("record not found after save")
	}
	if got.Kind != KindEligibility || got.InputJSON != rec.InputJSON || got.OutputJSON != rec.OutputJSON {
		t.Errorf("record round-trip mismatch: %+v", got)
	}
	if len(got.ReasonCodes) != 2 || got.ReasonCodes[0] != "ltv_binding" {
		t.Errorf("reason codes mismatch: %v", got.ReasonCodes)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at must be stamped on save")
	}
}

func TestStore_GetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetCalculation(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("missing record should be nil, got %+v", got)
	}
}

func TestStore_AppendOnly_DuplicateIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(KindCompliance)
	if err := store.SaveCalculation(ctx, rec); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	// Same ID again: the record is immutable, a rewrite must fail.
	rec.OutputJSON = `{"max_loan":0}`
	if err := store.SaveCalculation(ctx, rec); err == nil {
		t.Fatal("duplicate ID must be rejected")
	}

	got, err := store.GetCalculation(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.OutputJSON != `{"max_loan":750000}` {
		t.Errorf("original record must survive the rejected rewrite: %s", got.OutputJSON)
	}
}

func TestStore_ListCalculations_FilterAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		rec := sampleRecord(KindEligibility)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveCalculation(ctx, rec); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	refi := sampleRecord(KindRefinance)
	refi.LimitingFactor = ""
	if err := store.SaveCalculation(ctx, refi); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	all, err := store.ListCalculations(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("want 4 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Errorf("listing must be newest-first: %v before %v", all[i-1].CreatedAt, all[i].CreatedAt)
		}
	}

	eligOnly, err := store.ListCalculations(ctx, ListFilter{Kind: KindEligibility})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(eligOnly) != 3 {
		t.Errorf("want 3 eligibility records, got %d", len(eligOnly))
	}

	limited, err := store.ListCalculations(ctx, ListFilter{Kind: KindEligibility, Limit: 2})
	if err != nil {
		t.Fatalf("limited list failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit not applied: got %d", len(limited))
	}

	ltvOnly, err := store.ListCalculations(ctx, ListFilter{LimitingFactor: "ltv"})
	if err != nil {
		t.Fatalf("limiting-factor list failed: %v", err)
	}
	if len(ltvOnly) != 3 {
		t.Errorf("want 3 ltv records, got %d", len(ltvOnly))
	}
}

func TestStore_ListOrdersSubsecondTimestamps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// 100ms vs 120ms renders as ".1" vs ".12" under a trimmed-zeros layout,
	// and ".1" sorts lexically after ".12". The stored layout is fixed-width
	// so the text sort must still put the 120ms record first.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := sampleRecord(KindEligibility)
	older.CreatedAt = base.Add(100 * time.Millisecond)
	newer := sampleRecord(KindEligibility)
	newer.CreatedAt = base.Add(120 * time.Millisecond)

	for _, rec := range []CalculationRecord{newer, older} {
		if err := store.SaveCalculation(ctx, rec); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	got, err := store.ListCalculations(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0].ID != newer.ID {
		t.Errorf("newest-first ordering: want %s first, got %s", newer.ID, got[0].ID)
	}
	if !got[0].CreatedAt.Equal(newer.CreatedAt) || !got[1].CreatedAt.Equal(older.CreatedAt) {
		t.Errorf("timestamps must round-trip exactly: %v, %v", got[0].CreatedAt, got[1].CreatedAt)
	}
}

func TestStore_CountCalculations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.SaveCalculation(ctx, sampleRecord(KindCompliance)); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := store.SaveCalculation(ctx, sampleRecord(KindRefinance)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	total, err := store.CountCalculations(ctx, "")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 3 {
		t.Errorf("want 3 total, got %d", total)
	}

	compliance, err := store.CountCalculations(ctx, KindCompliance)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if compliance != 2 {
		t.Errorf("want 2 compliance records, got %d", compliance)
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	store := newTestStore(t)

	rec := sampleRecord(KindEligibility)
	rec.ID = ""
	if err := store.SaveCalculation(context.Background(), rec); err == nil {
		t.Fatal("record without an ID must be rejected")
	}
}
