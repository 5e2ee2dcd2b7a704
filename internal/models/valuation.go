package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionValue is the point-in-time valuation of a single holding.
type PositionValue struct {
	CurrentValue      decimal.Decimal `json:"current_value"`
	CostBasis         decimal.Decimal `json:"cost_basis"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
}

// PortfolioSummary aggregates position valuations across a portfolio.
type PortfolioSummary struct {
	TotalValue        decimal.Decimal `json:"total_value"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	TotalProfitLoss   decimal.Decimal `json:"total_profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
}

// PortfolioPosition pairs a holding view with its valuation for
// portfolio responses.
type PortfolioPosition struct {
	HoldingView
	PositionValue
}

// WatchlistEntry is a watchlist row joined with stock display fields.
type WatchlistEntry struct {
	UserID        string          `json:"user_id"`
	StockID       string          `json:"stock_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	AddedAt       time.Time       `json:"added_at"`
}
