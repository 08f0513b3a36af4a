package markets

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Status is a market's trading phase.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusActive      Status = "active"
	StatusClosed      Status = "closed"
	StatusDetermined  Status = "determined"
	StatusSettled     Status = "settled"
)

// Result is a market's settlement outcome. The wire encodes an
// undetermined market as an empty string; decoding maps it to
// ResultUndetermined so callers never branch on "".
type Result int

const (
	ResultUndetermined Result = iota
	ResultYes
	ResultNo
)

func (r Result) String() string {
	switch r {
	case ResultYes:
		return "yes"
	case ResultNo:
		return "no"
	default:
		return "undetermined"
	}
}

// UnmarshalJSON decodes the wire's "yes"/"no"/"" encoding.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode market result: %w", err)
	}
	switch s {
	case "yes":
		*r = ResultYes
	case "no":
		*r = ResultNo
	case "":
		*r = ResultUndetermined
	default:
		return fmt.Errorf("unknown market result %q", s)
	}
	return nil
}

// MarshalJSON re-encodes the wire form, with undetermined as "".
func (r Result) MarshalJSON() ([]byte, error) {
	switch r {
	case ResultYes:
		return json.Marshal("yes")
	case ResultNo:
		return json.Marshal("no")
	default:
		return json.Marshal("")
	}
}

// Account holds the on-chain addresses backing one market.
type Account struct {
	MarketLedger     string `json:"marketLedger"`
	YesMint          string `json:"yesMint"`
	NoMint           string `json:"noMint"`
	IsInitialized    bool   `json:"isInitialized"`
	RedemptionStatus string `json:"redemptionStatus"`
}

// Market is one prediction market instrument.
type Market struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"eventTicker"`
	SeriesTicker string `json:"seriesTicker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	MarketType   string `json:"marketType"`
	Status       Status `json:"status"`
	Result       Result `json:"result"`

	YesBid *decimal.Decimal `json:"yesBid"`
	YesAsk *decimal.Decimal `json:"yesAsk"`
	NoBid  *decimal.Decimal `json:"noBid"`
	NoAsk  *decimal.Decimal `json:"noAsk"`

	Volume       *decimal.Decimal `json:"volume"`
	Volume24H    *decimal.Decimal `json:"volume24h"`
	OpenInterest *decimal.Decimal `json:"openInterest"`
	Liquidity    *decimal.Decimal `json:"liquidity"`

	OpenTime  json.Number `json:"openTime"`
	CloseTime json.Number `json:"closeTime"`

	Accounts map[string]Account `json:"accounts"`
}

// Token is a tradable asset known to the platform.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI"`
}

// MarketsPage is one page of a market listing.
type MarketsPage struct {
	Markets []Market `json:"markets"`
	Cursor  *int64   `json:"cursor"`
}

// ListParams filters a market listing. Zero values are omitted from the
// query.
type ListParams struct {
	Status       Status
	EventTicker  string
	SeriesTicker string
	Limit        int
	Cursor       int64
}
