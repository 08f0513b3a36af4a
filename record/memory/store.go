package memory

import (
	"context"
	"sort"
	"sync"

	"solana-prediction-sdk/record"
	"solana-prediction-sdk/solana"
)

// Store is an in-memory implementation of record.Store.
type Store struct {
	mu   sync.RWMutex
	data map[string]*solana.TransactionRecord // keyed by signature
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string]*solana.TransactionRecord),
	}
}

// Compile-time interface check.
var _ record.Store = (*Store)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the signature
// already exists.
func (s *Store) Insert(_ context.Context, rec *solana.TransactionRecord) error {
	if rec == nil || rec.Signature == "" {
		return record.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.Signature]; exists {
		return record.ErrDuplicateKey
	}

	copy := *rec
	s.data[rec.Signature] = &copy
	return nil
}

// Update replaces an existing record. Returns ErrNotFound if absent.
func (s *Store) Update(_ context.Context, rec *solana.TransactionRecord) error {
	if rec == nil || rec.Signature == "" {
		return record.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.Signature]; !exists {
		return record.ErrNotFound
	}

	copy := *rec
	s.data[rec.Signature] = &copy
	return nil
}

// GetBySignature retrieves one record. Returns ErrNotFound if absent.
func (s *Store) GetBySignature(_ context.Context, signature string) (*solana.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[signature]
	if !exists {
		return nil, record.ErrNotFound
	}

	copy := *rec
	return &copy, nil
}

// ListByStatus retrieves all records in the given status, ordered by
// submission time ascending.
func (s *Store) ListByStatus(_ context.Context, status solana.Status) ([]*solana.TransactionRecord, error) {
	return s.list(func(rec *solana.TransactionRecord) bool {
		return rec.Status == status
	}), nil
}

// ListPending retrieves all records not yet in a terminal status.
func (s *Store) ListPending(_ context.Context) ([]*solana.TransactionRecord, error) {
	return s.list(func(rec *solana.TransactionRecord) bool {
		return !rec.Status.Terminal()
	}), nil
}

func (s *Store) list(match func(*solana.TransactionRecord) bool) []*solana.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*solana.TransactionRecord
	for _, rec := range s.data {
		if match(rec) {
			copy := *rec
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].Signature < result[j].Signature
		}
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})

	return result
}
