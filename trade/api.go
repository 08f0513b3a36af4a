// Package trade implements the quote and build pipelines: swap, intent
// and order. Every build request embeds the quote that produced it, so
// quoting and building stay two explicit phases.
package trade

import (
	"errors"
	"fmt"
	"strconv"

	"solana-prediction-sdk/httpapi"
	"solana-prediction-sdk/solana"
)

// DefaultSlippageBps is applied when an intent does not set slippage.
const DefaultSlippageBps = 50

// Validation sentinels, all raised before any network call.
var (
	ErrAmountRequired     = errors.New("trade amount must be greater than zero")
	ErrMintRequired       = errors.New("input and output mints are required")
	ErrSameMint           = errors.New("input and output mints must differ")
	ErrSlippageOutOfRange = errors.New("slippage must be between 0 and 10000 bps")
	ErrInvalidMode        = errors.New("mode must be ExactIn or ExactOut")
	ErrUserKeyRequired    = errors.New("user public key is required to build a transaction")
	ErrQuoteMissing       = errors.New("quote response is empty")
)

// Intent describes one desired trade. Validated once, then treated as
// immutable by the pipeline.
type Intent struct {
	InputMint  string
	OutputMint string
	// Amount is in base units of the fixed side.
	Amount uint64
	Mode   Mode

	// SlippageBps is the tolerance in [0, 10000]. Nil means the default
	// of 50; use Slippage(0) to request zero tolerance explicitly.
	SlippageBps *int

	// UserPublicKey is required for building, not for quoting.
	UserPublicKey string

	PlatformFeeBps     int
	PlatformFeeAccount string
	PriorityFee        *PriorityFee
}

// validate checks fields needed for quoting.
func (in Intent) validate() error {
	if in.InputMint == "" || in.OutputMint == "" {
		return ErrMintRequired
	}
	if in.InputMint == in.OutputMint {
		return ErrSameMint
	}
	if err := solana.ValidateAddress(in.InputMint); err != nil {
		return fmt.Errorf("input mint: %w", err)
	}
	if err := solana.ValidateAddress(in.OutputMint); err != nil {
		return fmt.Errorf("output mint: %w", err)
	}
	if in.Amount == 0 {
		return ErrAmountRequired
	}
	if in.Mode != "" && in.Mode != ExactIn && in.Mode != ExactOut {
		return ErrInvalidMode
	}
	if in.SlippageBps != nil && (*in.SlippageBps < 0 || *in.SlippageBps > 10000) {
		return ErrSlippageOutOfRange
	}
	return nil
}

// validateForBuild additionally requires a signable user key.
func (in Intent) validateForBuild() error {
	if err := in.validate(); err != nil {
		return err
	}
	return validateUserKey(in.UserPublicKey)
}

// validateUserKey requires a base58 key that is a real ed25519 point,
// i.e. one that can sign.
func validateUserKey(key string) error {
	if key == "" {
		return ErrUserKeyRequired
	}
	if err := solana.ValidatePublicKey(key); err != nil {
		return fmt.Errorf("user public key: %w", err)
	}
	return nil
}

func (in Intent) mode() Mode {
	if in.Mode == "" {
		return ExactIn
	}
	return in.Mode
}

// Slippage builds the pointer form of a slippage tolerance.
func Slippage(bps int) *int {
	return &bps
}

func (in Intent) slippageBps() int {
	if in.SlippageBps == nil {
		return DefaultSlippageBps
	}
	return *in.SlippageBps
}

func (in Intent) amountString() string {
	return strconv.FormatUint(in.Amount, 10)
}

// API drives the trade pipelines against the quote service.
type API struct {
	http *httpapi.Client
}

// New creates a trade API over the given HTTP client.
func New(http *httpapi.Client) *API {
	return &API{http: http}
}
