package surrealdb

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

// TransactionStore persists the append-only trade log. Rows are only
// ever inserted; there is no update or delete path.
type TransactionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewTransactionStore(db *surrealdb.DB, logger *common.Logger) *TransactionStore {
	return &TransactionStore{
		db:     db,
		logger: logger,
	}
}

func (s *TransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	sql := "CREATE $rid CONTENT $tx"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("transaction", tx.TransactionID),
		"tx":  tx,
	}

	if _, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars); err != nil {
		return &models.StorageError{Op: "insert transaction", Err: err}
	}
	return nil
}

func (s *TransactionStore) list(ctx context.Context, sql string, vars map[string]any, op string) ([]*models.Transaction, error) {
	results, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: op, Err: err}
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Transaction
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *TransactionStore) ListForUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	sql := "SELECT * FROM transaction WHERE user_id = $user_id ORDER BY transaction_date DESC"
	return s.list(ctx, sql, map[string]any{"user_id": userID}, "list transactions for user")
}

func (s *TransactionStore) ListByStock(ctx context.Context, stockID string) ([]*models.Transaction, error) {
	sql := "SELECT * FROM transaction WHERE stock_id = $stock_id ORDER BY transaction_date DESC"
	return s.list(ctx, sql, map[string]any{"stock_id": stockID}, "list transactions for stock")
}

func (s *TransactionStore) ListAll(ctx context.Context) ([]*models.Transaction, error) {
	sql := "SELECT * FROM transaction ORDER BY transaction_date DESC"
	return s.list(ctx, sql, nil, "list all transactions")
}

// Summarize aggregates a user's history in Go rather than in SurrealQL
// so the decimal sums stay exact.
func (s *TransactionStore) Summarize(ctx context.Context, userID string) (*models.TransactionSummary, error) {
	rows, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &models.TransactionSummary{
		TotalTransactions: len(rows),
		TotalPurchases:    decimal.Zero,
		TotalSales:        decimal.Zero,
	}
	for _, tx := range rows {
		switch tx.Type {
		case models.TransactionBuy:
			summary.TotalPurchases = summary.TotalPurchases.Add(tx.TotalAmount)
		case models.TransactionSell:
			summary.TotalSales = summary.TotalSales.Add(tx.TotalAmount)
		}
	}
	return summary, nil
}
