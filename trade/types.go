package trade

import "encoding/json"

// Mode selects which side of a trade is fixed.
type Mode string

const (
	// ExactIn fixes the input amount; the output is quoted.
	ExactIn Mode = "ExactIn"
	// ExactOut fixes the output amount; the input is quoted.
	ExactOut Mode = "ExactOut"
)

// PriorityFee configures the priority fee attached to a built
// transaction.
type PriorityFee struct {
	// Type is "exact", "auto" or "autoMultiplier".
	Type string `json:"type"`
	// Amount is lamports for "exact", a multiplier for "autoMultiplier".
	Amount uint64 `json:"amount,omitempty"`
}

// RoutePlanStep is one hop of a quoted route.
type RoutePlanStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

// SwapInfo describes the venue and amounts of one route hop.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// SwapQuote is a quote from the swap pipeline. It is embedded verbatim
// as quoteResponse when building the swap transaction, so unknown fields
// are preserved in raw.
type SwapQuote struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             Mode            `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`

	raw json.RawMessage
}

// UnmarshalJSON keeps the raw payload alongside the decoded fields.
func (q *SwapQuote) UnmarshalJSON(data []byte) error {
	type alias SwapQuote
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*q = SwapQuote(a)
	q.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the quote exactly as received when available.
func (q SwapQuote) MarshalJSON() ([]byte, error) {
	if q.raw != nil {
		return q.raw, nil
	}
	type alias SwapQuote
	return json.Marshal(alias(q))
}

// SwapResponse is a built swap transaction ready for signing.
type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
	ComputeUnitLimit          uint64 `json:"computeUnitLimit"`
}

// AccountMeta is a serialized instruction account.
type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// Instruction is a serialized Solana instruction.
type Instruction struct {
	ProgramID string        `json:"programId"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"`
}

// SwapInstructionsResponse carries the swap as raw instructions for
// callers composing their own transaction.
type SwapInstructionsResponse struct {
	ComputeBudgetInstructions   []Instruction `json:"computeBudgetInstructions"`
	SetupInstructions           []Instruction `json:"setupInstructions"`
	SwapInstruction             Instruction   `json:"swapInstruction"`
	CleanupInstruction          *Instruction  `json:"cleanupInstruction"`
	AddressLookupTableAddresses []string      `json:"addressLookupTableAddresses"`
}

// IntentQuote is a quote from the intent pipeline, embedded verbatim as
// quoteResponse on submission.
type IntentQuote struct {
	InputMint    string `json:"inputMint"`
	OutputMint   string `json:"outputMint"`
	InAmount     string `json:"inAmount"`
	OutAmount    string `json:"outAmount"`
	MinOutAmount string `json:"minOutAmount"`
	MaxInAmount  string `json:"maxInAmount"`
	SwapMode     Mode   `json:"swapMode"`
	ExpiresAt    int64  `json:"expiresAt"`

	raw json.RawMessage
}

// UnmarshalJSON keeps the raw payload alongside the decoded fields.
func (q *IntentQuote) UnmarshalJSON(data []byte) error {
	type alias IntentQuote
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*q = IntentQuote(a)
	q.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the quote exactly as received when available.
func (q IntentQuote) MarshalJSON() ([]byte, error) {
	if q.raw != nil {
		return q.raw, nil
	}
	type alias IntentQuote
	return json.Marshal(alias(q))
}

// IntentResponse is a submitted intent: a transaction to sign plus the
// platform's intent identifier.
type IntentResponse struct {
	Transaction string `json:"transaction"`
	IntentID    string `json:"intentId"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// OrderResponse is a built order transaction.
type OrderResponse struct {
	Transaction    string `json:"transaction"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	ExecutionMode  string `json:"executionMode"`
	PriceImpactPct string `json:"priceImpactPct"`
}

// OrderState is the platform's view of a submitted order.
type OrderState string

const (
	OrderPending OrderState = "pending"
	OrderFilled  OrderState = "filled"
	OrderExpired OrderState = "expired"
	OrderFailed  OrderState = "failed"
)

// Fill is one execution of an order.
type Fill struct {
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}

// OrderStatusResponse reports order progress by transaction signature.
type OrderStatusResponse struct {
	Status    OrderState `json:"status"`
	Signature string     `json:"signature"`
	InAmount  string     `json:"inAmount"`
	OutAmount string     `json:"outAmount"`
	Fills     []Fill     `json:"fills"`
	Error     string     `json:"error"`
}

// MarketInitResponse is a transaction that initializes a market's
// on-chain accounts.
type MarketInitResponse struct {
	Transaction string `json:"transaction"`
	YesMint     string `json:"yesMint"`
	NoMint      string `json:"noMint"`
}
