// Package record persists transaction lifecycle records. The solana
// Manager writes through the narrow solana.RecordStore interface; this
// package adds read access and the concrete backends.
package record

import (
	"context"
	"errors"

	"solana-prediction-sdk/solana"
)

// Storage errors returned by all Store implementations.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
)

// Store persists transaction records, keyed by signature.
type Store interface {
	solana.RecordStore

	// GetBySignature retrieves one record. Returns ErrNotFound if absent.
	GetBySignature(ctx context.Context, signature string) (*solana.TransactionRecord, error)

	// ListByStatus retrieves all records in the given status, ordered by
	// submission time ascending.
	ListByStatus(ctx context.Context, status solana.Status) ([]*solana.TransactionRecord, error)

	// ListPending retrieves all records not yet in a terminal status,
	// ordered by submission time ascending.
	ListPending(ctx context.Context) ([]*solana.TransactionRecord, error)
}
