package trade

import (
	"context"
	"fmt"
	"strconv"
)

// GetIntentQuote requests an intent quote. ExactOut intents quote the
// maximum input for a fixed output; ExactIn the reverse.
func (a *API) GetIntentQuote(ctx context.Context, in Intent) (*IntentQuote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"inputMint":  in.InputMint,
		"outputMint": in.OutputMint,
		"amount":     in.amountString(),
		"swapMode":   string(in.mode()),
	}

	var quote IntentQuote
	if err := a.http.Get(ctx, "/intent", params, &quote); err != nil {
		return nil, fmt.Errorf("get intent quote: %w", err)
	}
	return &quote, nil
}

// intentRequest is the submission request. The quote is embedded
// verbatim.
type intentRequest struct {
	QuoteResponse *IntentQuote `json:"quoteResponse"`
	UserPublicKey string       `json:"userPublicKey"`
	SlippageBps   int          `json:"slippageBps"`
	PriorityFee   *PriorityFee `json:"priorityFee,omitempty"`
}

// SubmitIntent submits an intent built from a quote and returns the
// transaction to sign. A nil quote triggers an internal re-quote.
func (a *API) SubmitIntent(ctx context.Context, in Intent, quote *IntentQuote) (*IntentResponse, error) {
	if err := in.validateForBuild(); err != nil {
		return nil, err
	}

	if quote == nil {
		fresh, err := a.GetIntentQuote(ctx, in)
		if err != nil {
			return nil, err
		}
		quote = fresh
	}

	req := intentRequest{
		QuoteResponse: quote,
		UserPublicKey: in.UserPublicKey,
		SlippageBps:   in.slippageBps(),
		PriorityFee:   in.PriorityFee,
	}

	var resp IntentResponse
	if err := a.http.Post(ctx, "/submit-intent", req, &resp); err != nil {
		return nil, fmt.Errorf("submit intent: %w", err)
	}
	if resp.Transaction == "" {
		return nil, ErrQuoteMissing
	}
	return &resp, nil
}

// GetOrder builds an order transaction in a single round trip, quoting
// and building server-side.
func (a *API) GetOrder(ctx context.Context, in Intent) (*OrderResponse, error) {
	if err := in.validateForBuild(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"inputMint":     in.InputMint,
		"outputMint":    in.OutputMint,
		"amount":        in.amountString(),
		"swapMode":      string(in.mode()),
		"slippageBps":   strconv.Itoa(in.slippageBps()),
		"userPublicKey": in.UserPublicKey,
	}
	if in.PlatformFeeBps > 0 {
		params["platformFeeBps"] = strconv.Itoa(in.PlatformFeeBps)
	}
	if in.PlatformFeeAccount != "" {
		params["feeAccount"] = in.PlatformFeeAccount
	}

	var resp OrderResponse
	if err := a.http.Get(ctx, "/order", params, &resp); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &resp, nil
}

// GetOrderStatus reports order progress by transaction signature.
func (a *API) GetOrderStatus(ctx context.Context, signature string) (*OrderStatusResponse, error) {
	if signature == "" {
		return nil, fmt.Errorf("signature is required")
	}

	var resp OrderStatusResponse
	if err := a.http.Get(ctx, "/order-status", map[string]string{"signature": signature}, &resp); err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}
	return &resp, nil
}

// InitializeMarket builds the transaction that creates a market's
// on-chain accounts. The settlement mint defaults to USDC server-side
// when empty.
func (a *API) InitializeMarket(ctx context.Context, ticker, userPublicKey, settlementMint string) (*MarketInitResponse, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if err := validateUserKey(userPublicKey); err != nil {
		return nil, err
	}

	params := map[string]string{
		"ticker":        ticker,
		"userPublicKey": userPublicKey,
		"mint":          settlementMint,
	}

	var resp MarketInitResponse
	if err := a.http.Get(ctx, "/prediction-market-init", params, &resp); err != nil {
		return nil, fmt.Errorf("initialize market: %w", err)
	}
	return &resp, nil
}
