package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-prediction-sdk/record"
	"solana-prediction-sdk/solana"
)

func newRecord(sig string, status solana.Status, submittedAt time.Time) *solana.TransactionRecord {
	return &solana.TransactionRecord{
		Signature:   sig,
		SubmittedAt: submittedAt,
		Status:      status,
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := New()

	rec := newRecord("sig-1", solana.StatusBroadcast, time.Now().UTC())
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetBySignature(ctx, "sig-1")
	if err != nil {
		t.Fatalf("GetBySignature failed: %v", err)
	}
	if got.Status != solana.StatusBroadcast {
		t.Errorf("unexpected status: %s", got.Status)
	}

	// The store must hold a copy, not the caller's pointer.
	rec.Status = solana.StatusFailed
	got, _ = store.GetBySignature(ctx, "sig-1")
	if got.Status != solana.StatusBroadcast {
		t.Error("store leaked a reference to the caller's record")
	}
}

func TestInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	store := New()

	rec := newRecord("sig-1", solana.StatusBroadcast, time.Now().UTC())
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, rec); !errors.Is(err, record.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestInsertInvalid(t *testing.T) {
	ctx := context.Background()
	store := New()

	if err := store.Insert(ctx, nil); !errors.Is(err, record.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &solana.TransactionRecord{}); !errors.Is(err, record.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty signature, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := New()

	rec := newRecord("sig-1", solana.StatusBroadcast, time.Now().UTC())
	if err := store.Update(ctx, rec); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing record, got %v", err)
	}

	store.Insert(ctx, rec)
	rec.Status = solana.StatusConfirmed
	rec.Slot = 42
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.GetBySignature(ctx, "sig-1")
	if got.Status != solana.StatusConfirmed || got.Slot != 42 {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	store := New()
	if _, err := store.GetBySignature(context.Background(), "nope"); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByStatusAndPending(t *testing.T) {
	ctx := context.Background()
	store := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.Insert(ctx, newRecord("sig-c", solana.StatusBroadcast, base.Add(3*time.Second)))
	store.Insert(ctx, newRecord("sig-a", solana.StatusBroadcast, base.Add(1*time.Second)))
	store.Insert(ctx, newRecord("sig-b", solana.StatusFinalized, base.Add(2*time.Second)))
	store.Insert(ctx, newRecord("sig-d", solana.StatusFailed, base.Add(4*time.Second)))

	broadcast, err := store.ListByStatus(ctx, solana.StatusBroadcast)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(broadcast) != 2 || broadcast[0].Signature != "sig-a" || broadcast[1].Signature != "sig-c" {
		t.Errorf("unexpected order: %+v", broadcast)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("terminal records must be excluded, got %d", len(pending))
	}
}
