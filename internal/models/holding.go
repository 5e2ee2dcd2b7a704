package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a user's open position in one stock. One row exists per
// (user, stock) pair while the position is open; a sell that brings
// the quantity to zero deletes the row rather than zeroing it.
//
// AverageCost is the quantity-weighted mean of all buy prices for the
// position. Sells reduce Quantity but never change AverageCost.
type Holding struct {
	UserID      string          `json:"user_id"`
	StockID     string          `json:"stock_id"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`

	// Version guards the read-modify-write cycle: every update or
	// delete must name the version it read, and the store rejects the
	// write when the row has moved on (ErrVersionConflict).
	Version int `json:"version"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// CostBasis returns quantity * average cost, the amount invested in
// the position.
func (h *Holding) CostBasis() decimal.Decimal {
	return decimal.NewFromInt(h.Quantity).Mul(h.AverageCost)
}

// HoldingView is a holding joined with the stock's display fields and
// live quote for portfolio listings.
type HoldingView struct {
	Holding
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}
