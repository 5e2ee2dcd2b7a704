package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock is a catalog entry. CurrentPrice is the quote used for
// valuation; it is owned by the catalog, not by the ledger.
type Stock struct {
	StockID       string          `json:"stock_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	MarketCap     decimal.Decimal `json:"market_cap"`
	Volume        int64           `json:"volume"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ModifiedAt    time.Time       `json:"modified_at"`
}

// DayChangePercent returns the percent move from the previous close,
// or zero when no previous close is known.
func (s *Stock) DayChangePercent() decimal.Decimal {
	if s.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return s.CurrentPrice.Sub(s.PreviousClose).
		Div(s.PreviousClose).
		Mul(decimal.NewFromInt(100))
}
