package solana

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a submitted transaction. Transitions
// only move forward; a terminal status never changes.
type Status int

const (
	StatusBroadcast Status = iota + 1
	StatusProcessed
	StatusConfirmed
	StatusFinalized
	StatusFailed
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusBroadcast:
		return "broadcast"
	case StatusProcessed:
		return "processed"
	case StatusConfirmed:
		return "confirmed"
	case StatusFinalized:
		return "finalized"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseStatus converts the string form back to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "broadcast":
		return StatusBroadcast, nil
	case "processed":
		return StatusProcessed, nil
	case "confirmed":
		return StatusConfirmed, nil
	case "finalized":
		return StatusFinalized, nil
	case "failed":
		return StatusFailed, nil
	case "timed_out":
		return StatusTimedOut, nil
	default:
		return 0, fmt.Errorf("unknown transaction status %q", s)
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusFailed || s == StatusTimedOut
}

// statusForCommitment maps an observed commitment level to a lifecycle
// status.
func statusForCommitment(c Commitment) Status {
	switch c {
	case CommitmentProcessed:
		return StatusProcessed
	case CommitmentConfirmed:
		return StatusConfirmed
	case CommitmentFinalized:
		return StatusFinalized
	default:
		return 0
	}
}

// TransactionRecord tracks one submitted transaction through its
// lifecycle.
type TransactionRecord struct {
	Signature    string
	SubmittedAt  time.Time
	LastPolledAt time.Time
	Slot         uint64
	Status       Status
	// Err holds the stringified on-chain error payload for failed
	// transactions.
	Err string
}

// RecordStore persists transaction records. The record package provides
// memory and postgres implementations; a nil store disables persistence.
type RecordStore interface {
	Insert(ctx context.Context, rec *TransactionRecord) error
	Update(ctx context.Context, rec *TransactionRecord) error
}

// ErrConfirmationTimeout is returned when a transaction does not reach
// the requested commitment before the confirmation timeout. It is
// distinct from on-chain failure: the transaction may still land.
var ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

// ExecutionError is the terminal error for a transaction the cluster
// executed and rejected. The manager never rebroadcasts after it.
type ExecutionError struct {
	Signature string
	// Payload is the raw err value from the cluster.
	Payload interface{}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed on chain: %v", e.Signature, e.Payload)
}

// Manager drives transactions through sign, broadcast and confirmation
// polling.
type Manager struct {
	rpc          RPCClient
	pollInterval time.Duration
	timeout      time.Duration
	store        RecordStore
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPollInterval sets the fixed status polling interval.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.pollInterval = d
	}
}

// WithConfirmTimeout sets the overall confirmation deadline.
func WithConfirmTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = d
	}
}

// WithRecordStore persists lifecycle records to the given store.
func WithRecordStore(store RecordStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// NewManager creates a Manager polling every 2s with a 60s timeout by
// default.
func NewManager(rpc RPCClient, opts ...ManagerOption) *Manager {
	m := &Manager{
		rpc:          rpc,
		pollInterval: 2 * time.Second,
		timeout:      60 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Sign decodes the base64 envelope, signs it and re-encodes it.
func (m *Manager) Sign(txBase64 string, signer Signer) (string, error) {
	tx, err := ParseTransaction(txBase64)
	if err != nil {
		return "", err
	}
	if err := tx.Sign(signer); err != nil {
		return "", err
	}
	return tx.Serialize(), nil
}

// Broadcast submits a signed transaction and opens its lifecycle record.
func (m *Manager) Broadcast(ctx context.Context, signedTx string) (*TransactionRecord, error) {
	signature, err := m.rpc.SendTransaction(ctx, signedTx)
	if err != nil {
		return nil, fmt.Errorf("broadcast transaction: %w", err)
	}

	rec := &TransactionRecord{
		Signature:   signature,
		SubmittedAt: time.Now().UTC(),
		Status:      StatusBroadcast,
	}
	m.open(ctx, rec)
	return rec, nil
}

// open inserts the lifecycle record. Best effort: the transaction is
// already on the network, so a store failure must not hide the
// signature or stop confirmation polling.
func (m *Manager) open(ctx context.Context, rec *TransactionRecord) {
	if m.store == nil {
		return
	}
	_ = m.store.Insert(ctx, rec)
}

// PollUntilConfirmed polls the signature status on a fixed interval
// until it reaches the target commitment, fails on chain, or the
// confirmation timeout elapses. A failed status query consumes one tick
// and is not retried inline. Context cancellation aborts polling with
// ctx.Err() without recording a terminal state.
func (m *Manager) PollUntilConfirmed(ctx context.Context, signature string, target Commitment) (*TransactionRecord, error) {
	rec := &TransactionRecord{
		Signature:   signature,
		SubmittedAt: time.Now().UTC(),
		Status:      StatusBroadcast,
	}
	// Open a row for signatures not broadcast through this manager so
	// the poll loop's updates have something to land on. Duplicate
	// inserts for already-opened signatures are a no-op.
	m.open(ctx, rec)
	return m.poll(ctx, rec, target)
}

// SignAndConfirm composes Sign, Broadcast and PollUntilConfirmed.
func (m *Manager) SignAndConfirm(ctx context.Context, txBase64 string, signer Signer, target Commitment) (*TransactionRecord, error) {
	signed, err := m.Sign(txBase64, signer)
	if err != nil {
		return nil, err
	}
	rec, err := m.Broadcast(ctx, signed)
	if err != nil {
		return nil, err
	}
	return m.poll(ctx, rec, target)
}

func (m *Manager) poll(ctx context.Context, rec *TransactionRecord, target Commitment) (*TransactionRecord, error) {
	if target == "" {
		target = CommitmentConfirmed
	}

	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-deadline.C:
			rec.Status = StatusTimedOut
			m.persist(ctx, rec)
			return rec, ErrConfirmationTimeout

		case <-ticker.C:
			statuses, err := m.rpc.GetSignatureStatuses(ctx, []string{rec.Signature})
			rec.LastPolledAt = time.Now().UTC()
			if err != nil || len(statuses) == 0 {
				// Transient query failure: wait for the next tick.
				continue
			}

			status := statuses[0]
			if status == nil {
				continue
			}
			rec.Slot = status.Slot

			if status.Err != nil {
				rec.Status = StatusFailed
				rec.Err = fmt.Sprintf("%v", status.Err)
				m.persist(ctx, rec)
				return rec, &ExecutionError{Signature: rec.Signature, Payload: status.Err}
			}

			if next := statusForCommitment(status.ConfirmationStatus); next > rec.Status {
				rec.Status = next
				m.persist(ctx, rec)
			}

			if status.ConfirmationStatus.AtLeast(target) {
				return rec, nil
			}
		}
	}
}

func (m *Manager) persist(ctx context.Context, rec *TransactionRecord) {
	if m.store == nil {
		return
	}
	// Lifecycle progress must not be lost to a storage hiccup; the
	// record is still returned to the caller.
	_ = m.store.Update(ctx, rec)
}
