package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"solana-prediction-sdk/stream"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]*Tick
	failN   int
}

func (s *fakeStore) InsertBulk(_ context.Context, ticks []*Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failN > 0 {
		s.failN--
		return errors.New("store unavailable")
	}
	batch := append([]*Tick(nil), ticks...)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *fakeStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func (s *fakeStore) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func update(ticker string, ts int64) stream.PriceUpdate {
	return stream.PriceUpdate{
		Ticker:    ticker,
		Timestamp: ts,
		YesPrice:  decimal.RequireFromString("0.42"),
		NoPrice:   decimal.RequireFromString("0.58"),
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestFlushOnBatchSize(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, WithBatchSize(3), WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	for i := 0; i < 3; i++ {
		rec.HandlePrice(update("BTC-100K", int64(i+1)))
	}

	waitFor(t, func() bool { return store.total() == 3 }, "batch never flushed")
	if store.batchCount() != 1 {
		t.Errorf("expected one batch, got %d", store.batchCount())
	}
}

func TestFlushOnInterval(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, WithBatchSize(100), WithFlushInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.HandlePrice(update("ETH-5K", 10))

	waitFor(t, func() bool { return store.total() == 1 }, "partial batch never flushed")
}

func TestFinalFlushOnCancel(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, WithBatchSize(100), WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	rec.HandlePrice(update("BTC-100K", 1))
	rec.HandlePrice(update("BTC-100K", 2))
	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if store.total() != 2 {
		t.Errorf("final flush lost ticks: stored %d of 2", store.total())
	}
}

func TestFailedFlushRetried(t *testing.T) {
	store := &fakeStore{failN: 1}
	rec := NewRecorder(store, WithBatchSize(2), WithFlushInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.HandlePrice(update("BTC-100K", 1))
	rec.HandlePrice(update("BTC-100K", 2))

	// First attempt fails, ticks stay buffered and land on a retry.
	waitFor(t, func() bool { return store.total() == 2 }, "retained batch never retried")
	if rec.Dropped() != 0 {
		t.Errorf("retry must not drop ticks, dropped %d", rec.Dropped())
	}
}

func TestFullQueueDrops(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, WithQueueDepth(2))

	// No Run loop, so the queue fills.
	for i := 0; i < 5; i++ {
		rec.HandlePrice(update("BTC-100K", int64(i+1)))
	}

	if rec.Dropped() != 3 {
		t.Errorf("expected 3 dropped, got %d", rec.Dropped())
	}
}

func TestZeroTimestampFilled(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, WithBatchSize(1), WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	before := time.Now().UnixMilli()
	rec.HandlePrice(update("BTC-100K", 0))

	waitFor(t, func() bool { return store.total() == 1 }, "tick never flushed")
	store.mu.Lock()
	ts := store.batches[0][0].TimestampMs
	store.mu.Unlock()
	if ts < before {
		t.Errorf("zero timestamp not filled: %d < %d", ts, before)
	}
}
