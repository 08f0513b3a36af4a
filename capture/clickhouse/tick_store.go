package clickhouse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"solana-prediction-sdk/capture"
)

// Store implements capture.TickStore on the price_ticks table.
type Store struct {
	conn *Conn
}

// NewStore creates a Store over conn.
func NewStore(conn *Conn) *Store {
	return &Store{conn: conn}
}

// Compile-time interface check.
var _ capture.TickStore = (*Store)(nil)

// InsertBulk appends all ticks in a single batch.
func (s *Store) InsertBulk(ctx context.Context, ticks []*capture.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_ticks (ticker, timestamp_ms, yes_price, no_price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tick := range ticks {
		yes, _ := tick.YesPrice.Float64()
		no, _ := tick.NoPrice.Float64()
		if err := batch.Append(tick.Ticker, uint64(tick.TimestampMs), yes, no); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTicker retrieves all ticks for a market, ordered by timestamp ASC.
func (s *Store) GetByTicker(ctx context.Context, ticker string) ([]*capture.Tick, error) {
	query := `
		SELECT ticker, timestamp_ms, yes_price, no_price
		FROM price_ticks
		WHERE ticker = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanTicks(rows)
}

// GetByTimeRange retrieves ticks for a market within [start, end] (inclusive).
func (s *Store) GetByTimeRange(ctx context.Context, ticker string, start, end int64) ([]*capture.Tick, error) {
	query := `
		SELECT ticker, timestamp_ms, yes_price, no_price
		FROM price_ticks
		WHERE ticker = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanTicks(rows)
}

// chRows abstracts driver.Rows for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanTicks(rows chRows) ([]*capture.Tick, error) {
	var ticks []*capture.Tick

	for rows.Next() {
		var tick capture.Tick
		var timestampMs uint64
		var yes, no float64

		if err := rows.Scan(&tick.Ticker, &timestampMs, &yes, &no); err != nil {
			return nil, fmt.Errorf("scan tick row: %w", err)
		}

		tick.TimestampMs = int64(timestampMs)
		tick.YesPrice = decimal.NewFromFloat(yes)
		tick.NoPrice = decimal.NewFromFloat(no)
		ticks = append(ticks, &tick)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tick rows: %w", err)
	}

	return ticks, nil
}
