// Package client wires the SDK together: metadata and trade HTTP
// clients, the websocket stream and transaction lifecycle management,
// all built from one Config.
package client

import (
	"solana-prediction-sdk/config"
	"solana-prediction-sdk/httpapi"
	"solana-prediction-sdk/markets"
	"solana-prediction-sdk/solana"
	"solana-prediction-sdk/stream"
	"solana-prediction-sdk/trade"
)

// Client is the top-level SDK handle. Component APIs are exported
// fields; the zero value is not usable, create one with New.
type Client struct {
	cfg config.Config

	// Markets serves metadata lookups and discovery.
	Markets *markets.API
	// Trade serves quoting and transaction building.
	Trade *trade.API
	// Stream is the real-time subscription client. It starts
	// disconnected; call Stream.Connect to use it.
	Stream *stream.Client

	metadataHTTP *httpapi.Client
	tradeHTTP    *httpapi.Client
}

// New builds a Client from cfg. Unset fields fall back to the
// environment preset defaults.
func New(cfg config.Config) *Client {
	cfg = cfg.Normalize()

	metadataHTTP := httpapi.New(cfg.MetadataBaseURL,
		httpapi.WithTimeout(cfg.HTTPTimeout),
		httpapi.WithAPIKey(cfg.APIKey),
	)
	tradeHTTP := httpapi.New(cfg.TradeBaseURL,
		httpapi.WithTimeout(cfg.HTTPTimeout),
		httpapi.WithAPIKey(cfg.APIKey),
	)

	streamCfg := stream.DefaultConfig()
	streamCfg.ReconnectInterval = cfg.ReconnectInterval
	streamCfg.MaxReconnectAttempts = cfg.MaxReconnectAttempts

	return &Client{
		cfg:          cfg,
		Markets:      markets.New(metadataHTTP, markets.WithBatchCeilings(cfg.MaxBatchSize, cfg.MaxFilterAddresses)),
		Trade:        trade.New(tradeHTTP),
		Stream:       stream.New(cfg.WebSocketURL, &streamCfg),
		metadataHTTP: metadataHTTP,
		tradeHTTP:    tradeHTTP,
	}
}

// Config returns the normalized configuration the client was built with.
func (c *Client) Config() config.Config {
	return c.cfg
}

// SetAPIKey rotates the API key on both HTTP clients. In-flight
// requests keep the key they started with.
func (c *Client) SetAPIKey(key string) {
	c.metadataHTTP.SetAPIKey(key)
	c.tradeHTTP.SetAPIKey(key)
}

// NewTransactionManager builds a lifecycle manager against rpc using
// the client's poll and confirmation settings. Explicit opts override
// them.
func (c *Client) NewTransactionManager(rpc solana.RPCClient, opts ...solana.ManagerOption) *solana.Manager {
	base := []solana.ManagerOption{
		solana.WithPollInterval(c.cfg.PollInterval),
		solana.WithConfirmTimeout(c.cfg.ConfirmTimeout),
	}
	return solana.NewManager(rpc, append(base, opts...)...)
}

// NewRPCClient builds a JSON-RPC client for the configured endpoint.
func (c *Client) NewRPCClient(opts ...solana.ClientOption) *solana.HTTPClient {
	return solana.NewHTTPClient(c.cfg.RPCEndpoint, opts...)
}

// Close shuts down the stream connection. HTTP clients hold no
// persistent resources.
func (c *Client) Close() error {
	return c.Stream.Disconnect()
}
