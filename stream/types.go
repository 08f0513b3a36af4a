package stream

import "github.com/shopspring/decimal"

// Channel is a subscription topic.
type Channel string

const (
	ChannelPrices    Channel = "prices"
	ChannelTrades    Channel = "trades"
	ChannelOrderbook Channel = "orderbook"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// request is the client-to-server subscription frame.
type request struct {
	Type    string   `json:"type"` // "subscribe" or "unsubscribe"
	Channel Channel  `json:"channel"`
	All     bool     `json:"all,omitempty"`
	Tickers []string `json:"tickers,omitempty"`
}

// envelope carries just enough of a server frame to route it.
type envelope struct {
	Channel Channel `json:"channel"`
}

// PriceUpdate is one price tick for a market.
type PriceUpdate struct {
	Channel   Channel         `json:"channel"`
	Ticker    string          `json:"ticker"`
	Timestamp int64           `json:"timestamp"`
	YesPrice  decimal.Decimal `json:"yesPrice"`
	NoPrice   decimal.Decimal `json:"noPrice"`

	YesBid *decimal.Decimal `json:"yesBid"`
	YesAsk *decimal.Decimal `json:"yesAsk"`
	NoBid  *decimal.Decimal `json:"noBid"`
	NoAsk  *decimal.Decimal `json:"noAsk"`
}

// TradeUpdate is one executed trade on a market.
type TradeUpdate struct {
	Channel   Channel         `json:"channel"`
	Ticker    string          `json:"ticker"`
	Timestamp int64           `json:"timestamp"`
	TradeID   string          `json:"tradeId"`
	Side      string          `json:"side"` // "yes" or "no"
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// PriceLevel is one orderbook level.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderbookUpdate is a full orderbook snapshot for a market.
type OrderbookUpdate struct {
	Channel   Channel      `json:"channel"`
	Ticker    string       `json:"ticker"`
	Timestamp int64        `json:"timestamp"`
	YesBids   []PriceLevel `json:"yesBids"`
	YesAsks   []PriceLevel `json:"yesAsks"`
	NoBids    []PriceLevel `json:"noBids"`
	NoAsks    []PriceLevel `json:"noAsks"`
}
