package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionBuy  = "buy"
	TransactionSell = "sell"
)

// Transaction is one executed trade. Rows are append-only: nothing in
// the system updates or deletes a transaction once recorded.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	StockID       string          `json:"stock_id"`
	Type          string          `json:"type"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Date          time.Time       `json:"transaction_date"`
}

// TransactionView is a transaction joined with stock display fields,
// and for admin reporting the owning user's email.
type TransactionView struct {
	Transaction
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	UserEmail string `json:"user_email,omitempty"`
}

// TransactionSummary aggregates a user's trade history.
type TransactionSummary struct {
	TotalTransactions int             `json:"total_transactions"`
	TotalPurchases    decimal.Decimal `json:"total_purchases"`
	TotalSales        decimal.Decimal `json:"total_sales"`
}
