// Package surrealdb implements the storage interfaces on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	userStore        *UserStore
	stockStore       *StockStore
	holdingStore     *HoldingStore
	transactionStore *TransactionStore
	watchlistStore   *WatchlistStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// Define tables up front; SurrealDB v3 errors on querying tables
	// that do not exist yet.
	tables := []string{"user", "stock", "holding", "transaction", "watchlist"}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	m := &Manager{
		db:     db,
		logger: logger,
	}

	m.userStore = NewUserStore(db, logger)
	m.stockStore = NewStockStore(db, logger)
	m.holdingStore = NewHoldingStore(db, logger)
	m.transactionStore = NewTransactionStore(db, logger)
	m.watchlistStore = NewWatchlistStore(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func (m *Manager) Users() interfaces.UserStore {
	return m.userStore
}

func (m *Manager) Stocks() interfaces.StockStore {
	return m.stockStore
}

func (m *Manager) Holdings() interfaces.HoldingStore {
	return m.holdingStore
}

func (m *Manager) Transactions() interfaces.TransactionStore {
	return m.transactionStore
}

func (m *Manager) Watchlist() interfaces.WatchlistStore {
	return m.watchlistStore
}

// Close closes the SurrealDB connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close(context.Background())
	}
	return nil
}
