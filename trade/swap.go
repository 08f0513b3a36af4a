package trade

import (
	"context"
	"fmt"
	"strconv"
)

// GetQuote requests a swap quote for the intent. The returned quote is
// read-only and must be passed unchanged to CreateSwap.
func (a *API) GetQuote(ctx context.Context, in Intent) (*SwapQuote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"inputMint":   in.InputMint,
		"outputMint":  in.OutputMint,
		"amount":      in.amountString(),
		"swapMode":    string(in.mode()),
		"slippageBps": strconv.Itoa(in.slippageBps()),
	}
	if in.PlatformFeeBps > 0 {
		params["platformFeeBps"] = strconv.Itoa(in.PlatformFeeBps)
	}

	var quote SwapQuote
	if err := a.http.Get(ctx, "/quote", params, &quote); err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return &quote, nil
}

// swapRequest is the build request. The quote is embedded verbatim.
type swapRequest struct {
	QuoteResponse    *SwapQuote   `json:"quoteResponse"`
	UserPublicKey    string       `json:"userPublicKey"`
	WrapAndUnwrapSol bool         `json:"wrapAndUnwrapSol"`
	FeeAccount       string       `json:"feeAccount,omitempty"`
	PriorityFee      *PriorityFee `json:"priorityFee,omitempty"`
}

// CreateSwap builds a signable swap transaction from a quote. A nil
// quote triggers an internal re-quote for the same intent.
func (a *API) CreateSwap(ctx context.Context, in Intent, quote *SwapQuote) (*SwapResponse, error) {
	if err := in.validateForBuild(); err != nil {
		return nil, err
	}

	if quote == nil {
		fresh, err := a.GetQuote(ctx, in)
		if err != nil {
			return nil, err
		}
		quote = fresh
	}

	req := swapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    in.UserPublicKey,
		WrapAndUnwrapSol: true,
		FeeAccount:       in.PlatformFeeAccount,
		PriorityFee:      in.PriorityFee,
	}

	var resp SwapResponse
	if err := a.http.Post(ctx, "/swap", req, &resp); err != nil {
		return nil, fmt.Errorf("create swap: %w", err)
	}
	if resp.SwapTransaction == "" {
		return nil, ErrQuoteMissing
	}
	return &resp, nil
}

// SwapInstructions builds the swap as raw instructions instead of a
// complete transaction.
func (a *API) SwapInstructions(ctx context.Context, in Intent, quote *SwapQuote) (*SwapInstructionsResponse, error) {
	if err := in.validateForBuild(); err != nil {
		return nil, err
	}

	if quote == nil {
		fresh, err := a.GetQuote(ctx, in)
		if err != nil {
			return nil, err
		}
		quote = fresh
	}

	req := swapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    in.UserPublicKey,
		WrapAndUnwrapSol: true,
		FeeAccount:       in.PlatformFeeAccount,
		PriorityFee:      in.PriorityFee,
	}

	var resp SwapInstructionsResponse
	if err := a.http.Post(ctx, "/swap-instructions", req, &resp); err != nil {
		return nil, fmt.Errorf("swap instructions: %w", err)
	}
	return &resp, nil
}
