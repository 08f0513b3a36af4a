package solana

import "context"

// Commitment is a Solana confirmation level. Levels form a total order:
// processed < confirmed < finalized.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether c satisfies the target level. A finalized
// status satisfies a confirmed target.
func (c Commitment) AtLeast(target Commitment) bool {
	return c.rank() > 0 && c.rank() >= target.rank()
}

// SignatureStatus is the cluster's view of one submitted transaction.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *uint64
	ConfirmationStatus Commitment
	// Err is the raw on-chain error payload, nil on success.
	Err interface{}
}

// Blockhash is a recent blockhash with its expiry height.
type Blockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// RPCClient defines the Solana RPC surface the transaction lifecycle
// depends on.
type RPCClient interface {
	// SendTransaction broadcasts a base64-encoded signed transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTx string) (string, error)

	// GetSignatureStatuses returns the status of each signature, nil for
	// signatures the cluster does not know yet.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)

	// GetLatestBlockhash returns a recent blockhash.
	GetLatestBlockhash(ctx context.Context, commitment Commitment) (*Blockhash, error)

	// GetSlot returns the current slot.
	GetSlot(ctx context.Context) (uint64, error)
}
