// Package capture records streamed price updates into a timeseries
// store. A Recorder buffers ticks from the websocket read path and
// flushes them in batches so slow storage never blocks dispatch.
package capture

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"solana-prediction-sdk/stream"
)

const (
	// DefaultBatchSize is the flush threshold in ticks.
	DefaultBatchSize = 256
	// DefaultFlushInterval bounds how long a partial batch may sit.
	DefaultFlushInterval = 5 * time.Second

	defaultQueueDepth = 4096

	// retainCapFactor bounds batch growth across failed flushes, as a
	// multiple of the batch size. Oldest ticks are dropped beyond it.
	retainCapFactor = 4
)

// Tick is one captured price observation for a market.
type Tick struct {
	Ticker      string
	TimestampMs int64
	YesPrice    decimal.Decimal
	NoPrice     decimal.Decimal
}

// TickStore persists captured ticks in bulk.
type TickStore interface {
	InsertBulk(ctx context.Context, ticks []*Tick) error
}

// Recorder buffers price updates and writes them to a TickStore.
// HandlePrice is safe to call from stream dispatch; the actual store
// writes happen on the Run goroutine.
type Recorder struct {
	store  TickStore
	logger stream.Logger

	batchSize  int
	flushEvery time.Duration

	queue   chan *Tick
	dropped atomic.Uint64
}

// RecorderOption customizes a Recorder.
type RecorderOption func(*Recorder)

// WithBatchSize sets the flush threshold.
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithFlushInterval sets the maximum age of a partial batch.
func WithFlushInterval(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.flushEvery = d
		}
	}
}

// WithQueueDepth sets the intake queue capacity. Updates arriving while
// the queue is full are dropped and counted.
func WithQueueDepth(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan *Tick, n)
		}
	}
}

// WithLogger sets the logger for flush failures.
func WithLogger(logger stream.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NewRecorder creates a Recorder writing to store. Call Run to start
// the flush loop.
func NewRecorder(store TickStore, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:      store,
		logger:     nopLogger{},
		batchSize:  DefaultBatchSize,
		flushEvery: DefaultFlushInterval,
		queue:      make(chan *Tick, defaultQueueDepth),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandlePrice enqueues one price update. It never blocks; if the queue
// is full the update is dropped and counted.
func (r *Recorder) HandlePrice(u stream.PriceUpdate) {
	tick := &Tick{
		Ticker:      u.Ticker,
		TimestampMs: u.Timestamp,
		YesPrice:    u.YesPrice,
		NoPrice:     u.NoPrice,
	}
	if tick.TimestampMs == 0 {
		tick.TimestampMs = time.Now().UnixMilli()
	}

	select {
	case r.queue <- tick:
	default:
		r.dropped.Add(1)
	}
}

// Attach registers the recorder on the client's price channel and
// returns the removal function.
func (r *Recorder) Attach(c *stream.Client) func() {
	return c.OnPrice(r.HandlePrice)
}

// Dropped reports how many updates were discarded because the queue
// was full or the retention cap was exceeded.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Run drains the queue until ctx is canceled, flushing by size and by
// interval. A final flush runs on shutdown with its own deadline.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.flushEvery)
	defer ticker.Stop()

	batch := make([]*Tick, 0, r.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = append(batch, r.drain()...)
			if len(batch) > 0 {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				r.flush(flushCtx, batch)
				cancel()
			}
			return ctx.Err()

		case tick := <-r.queue:
			batch = append(batch, tick)
			if len(batch) >= r.batchSize {
				batch = r.flush(ctx, batch)
			}

		case <-ticker.C:
			batch = r.flush(ctx, batch)
		}
	}
}

// drain empties the intake queue without blocking.
func (r *Recorder) drain() []*Tick {
	var ticks []*Tick
	for {
		select {
		case tick := <-r.queue:
			ticks = append(ticks, tick)
		default:
			return ticks
		}
	}
}

// flush writes the batch. On failure the batch is retained for the
// next attempt, capped so a long outage cannot grow it unbounded.
func (r *Recorder) flush(ctx context.Context, batch []*Tick) []*Tick {
	if len(batch) == 0 {
		return batch
	}
	if err := r.store.InsertBulk(ctx, batch); err != nil {
		r.logger.Printf("capture: flush of %d ticks failed: %v", len(batch), err)
		if limit := retainCapFactor * r.batchSize; len(batch) > limit {
			over := len(batch) - limit
			r.dropped.Add(uint64(over))
			batch = append(batch[:0], batch[over:]...)
		}
		return batch
	}
	return batch[:0]
}
