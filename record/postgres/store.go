package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-prediction-sdk/record"
	"solana-prediction-sdk/solana"
)

// Store implements record.Store using PostgreSQL.
type Store struct {
	pool *Pool
}

// NewStore creates a new Store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Compile-time interface check.
var _ record.Store = (*Store)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the signature
// exists.
func (s *Store) Insert(ctx context.Context, rec *solana.TransactionRecord) error {
	if rec == nil || rec.Signature == "" {
		return record.ErrInvalidInput
	}

	query := `
		INSERT INTO transaction_records (
			signature, submitted_at, last_polled_at, slot, status, err
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.Signature, rec.SubmittedAt, nullableTime(rec.LastPolledAt),
		int64(rec.Slot), rec.Status.String(), rec.Err,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return record.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction record: %w", err)
	}
	return nil
}

// Update replaces an existing record. Returns ErrNotFound if absent.
func (s *Store) Update(ctx context.Context, rec *solana.TransactionRecord) error {
	if rec == nil || rec.Signature == "" {
		return record.ErrInvalidInput
	}

	query := `
		UPDATE transaction_records
		SET last_polled_at = $2, slot = $3, status = $4, err = $5
		WHERE signature = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		rec.Signature, nullableTime(rec.LastPolledAt),
		int64(rec.Slot), rec.Status.String(), rec.Err,
	)
	if err != nil {
		return fmt.Errorf("update transaction record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}

// GetBySignature retrieves one record. Returns ErrNotFound if absent.
func (s *Store) GetBySignature(ctx context.Context, signature string) (*solana.TransactionRecord, error) {
	query := `
		SELECT signature, submitted_at, last_polled_at, slot, status, err
		FROM transaction_records
		WHERE signature = $1
	`

	rec, err := scanRecord(s.pool.QueryRow(ctx, query, signature))
	if err != nil {
		if isNotFoundError(err) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction record: %w", err)
	}
	return rec, nil
}

// ListByStatus retrieves all records in the given status, ordered by
// submission time ascending.
func (s *Store) ListByStatus(ctx context.Context, status solana.Status) ([]*solana.TransactionRecord, error) {
	query := `
		SELECT signature, submitted_at, last_polled_at, slot, status, err
		FROM transaction_records
		WHERE status = $1
		ORDER BY submitted_at ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, status.String())
	if err != nil {
		return nil, fmt.Errorf("list transaction records by status: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListPending retrieves all records not yet in a terminal status.
func (s *Store) ListPending(ctx context.Context) ([]*solana.TransactionRecord, error) {
	query := `
		SELECT signature, submitted_at, last_polled_at, slot, status, err
		FROM transaction_records
		WHERE status NOT IN ('finalized', 'failed', 'timed_out')
		ORDER BY submitted_at ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending transaction records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// scanRecord scans a single row into a TransactionRecord.
func scanRecord(row pgx.Row) (*solana.TransactionRecord, error) {
	var rec solana.TransactionRecord
	var lastPolled *time.Time
	var slot int64
	var status string

	err := row.Scan(&rec.Signature, &rec.SubmittedAt, &lastPolled, &slot, &status, &rec.Err)
	if err != nil {
		return nil, err
	}

	if lastPolled != nil {
		rec.LastPolledAt = *lastPolled
	}
	rec.Slot = uint64(slot)
	rec.Status, err = solana.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanRecords scans multiple rows.
func scanRecords(rows pgx.Rows) ([]*solana.TransactionRecord, error) {
	var records []*solana.TransactionRecord

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction record rows: %w", err)
	}

	return records, nil
}
