// Package markets exposes the metadata surface of the prediction-markets
// platform: market lookup, batch queries and the token registry.
package markets

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"solana-prediction-sdk/httpapi"
)

// Batch query ceilings. Both are enforced locally before any request is
// made.
const (
	DefaultMaxBatchSize       = 100
	DefaultMaxFilterAddresses = 200
)

var (
	// ErrBatchTooLarge means a batch lookup exceeded the combined
	// tickers+mints ceiling.
	ErrBatchTooLarge = errors.New("batch query exceeds maximum item count")

	// ErrTooManyAddresses means a filter request exceeded the address
	// ceiling.
	ErrTooManyAddresses = errors.New("filter query exceeds maximum address count")

	// ErrEmptyBatch means a batch lookup had nothing to look up.
	ErrEmptyBatch = errors.New("batch query has no tickers or mints")
)

// API queries market metadata.
type API struct {
	http *httpapi.Client

	maxBatchSize       int
	maxFilterAddresses int
}

// APIOption configures an API.
type APIOption func(*API)

// WithBatchCeilings overrides the platform's batch query ceilings.
func WithBatchCeilings(batch, filter int) APIOption {
	return func(a *API) {
		if batch > 0 {
			a.maxBatchSize = batch
		}
		if filter > 0 {
			a.maxFilterAddresses = filter
		}
	}
}

// New creates a metadata API over the given HTTP client.
func New(http *httpapi.Client, opts ...APIOption) *API {
	a := &API{
		http:               http,
		maxBatchSize:       DefaultMaxBatchSize,
		maxFilterAddresses: DefaultMaxFilterAddresses,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetMarket fetches a single market by ticker.
func (a *API) GetMarket(ctx context.Context, ticker string) (*Market, error) {
	if ticker == "" {
		return nil, errors.New("ticker is required")
	}
	var out struct {
		Market Market `json:"market"`
	}
	if err := a.http.Get(ctx, "/market/"+ticker, nil, &out); err != nil {
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}
	return &out.Market, nil
}

// GetMarketByMint fetches the market backing an outcome token mint.
func (a *API) GetMarketByMint(ctx context.Context, mint string) (*Market, error) {
	if mint == "" {
		return nil, errors.New("mint is required")
	}
	var out struct {
		Market Market `json:"market"`
	}
	if err := a.http.Get(ctx, "/market", map[string]string{"mint": mint}, &out); err != nil {
		return nil, fmt.Errorf("get market by mint %s: %w", mint, err)
	}
	return &out.Market, nil
}

// GetMarkets lists markets with optional filters and cursor pagination.
func (a *API) GetMarkets(ctx context.Context, params ListParams) (*MarketsPage, error) {
	query := map[string]string{
		"status":       string(params.Status),
		"eventTicker":  params.EventTicker,
		"seriesTicker": params.SeriesTicker,
	}
	if params.Limit > 0 {
		query["limit"] = strconv.Itoa(params.Limit)
	}
	if params.Cursor > 0 {
		query["cursor"] = strconv.FormatInt(params.Cursor, 10)
	}

	var page MarketsPage
	if err := a.http.Get(ctx, "/markets", query, &page); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return &page, nil
}

// GetMarketsBatch fetches markets for up to 100 tickers and mints
// combined. The ceiling is checked locally; an oversized batch never
// reaches the network.
func (a *API) GetMarketsBatch(ctx context.Context, tickers, mints []string) ([]Market, error) {
	total := len(tickers) + len(mints)
	if total == 0 {
		return nil, ErrEmptyBatch
	}
	if total > a.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, maximum %d", ErrBatchTooLarge, total, a.maxBatchSize)
	}

	body := map[string]any{}
	if len(tickers) > 0 {
		body["tickers"] = tickers
	}
	if len(mints) > 0 {
		body["mints"] = mints
	}

	var out struct {
		Markets []Market `json:"markets"`
	}
	if err := a.http.Post(ctx, "/markets/batch", body, &out); err != nil {
		return nil, fmt.Errorf("batch markets: %w", err)
	}
	return out.Markets, nil
}

// GetOutcomeMints lists outcome token mints, optionally only for markets
// closing at or after minCloseTs (unix seconds).
func (a *API) GetOutcomeMints(ctx context.Context, minCloseTs int64) ([]string, error) {
	params := map[string]string{}
	if minCloseTs > 0 {
		params["minCloseTs"] = strconv.FormatInt(minCloseTs, 10)
	}

	var out struct {
		Mints []string `json:"mints"`
	}
	if err := a.http.Get(ctx, "/outcome_mints", params, &out); err != nil {
		return nil, fmt.Errorf("get outcome mints: %w", err)
	}
	return out.Mints, nil
}

// FilterOutcomeMints returns the subset of up to 200 addresses that are
// outcome token mints. The ceiling is checked locally.
func (a *API) FilterOutcomeMints(ctx context.Context, addresses []string) ([]string, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if len(addresses) > a.maxFilterAddresses {
		return nil, fmt.Errorf("%w: %d addresses, maximum %d", ErrTooManyAddresses, len(addresses), a.maxFilterAddresses)
	}

	var out struct {
		OutcomeMints []string `json:"outcomeMints"`
	}
	if err := a.http.Post(ctx, "/filter_outcome_mints", map[string]any{"addresses": addresses}, &out); err != nil {
		return nil, fmt.Errorf("filter outcome mints: %w", err)
	}
	return out.OutcomeMints, nil
}

// GetTokens lists the platform token registry.
func (a *API) GetTokens(ctx context.Context) ([]Token, error) {
	var out struct {
		Tokens []Token `json:"tokens"`
	}
	if err := a.http.Get(ctx, "/tokens", nil, &out); err != nil {
		return nil, fmt.Errorf("get tokens: %w", err)
	}
	return out.Tokens, nil
}

// GetTokenDecimals returns the registry as a mint → decimal scale map,
// the shape amount conversions want.
func (a *API) GetTokenDecimals(ctx context.Context) (map[string]int, error) {
	tokens, err := a.GetTokens(ctx)
	if err != nil {
		return nil, err
	}

	decimals := make(map[string]int, len(tokens))
	for _, token := range tokens {
		decimals[token.Address] = token.Decimals
	}
	return decimals, nil
}
