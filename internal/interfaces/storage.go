// Package interfaces defines the storage and service contracts wired
// together in app.
package interfaces

import (
	"context"

	"github.com/stocksim/stocksim/internal/models"
)

// StorageManager bundles the per-table stores behind one connection.
type StorageManager interface {
	Users() UserStore
	Stocks() StockStore
	Holdings() HoldingStore
	Transactions() TransactionStore
	Watchlist() WatchlistStore
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

// StockStore persists the tradable stock catalog.
type StockStore interface {
	GetStock(ctx context.Context, stockID string) (*models.Stock, error)
	GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error)
	SaveStock(ctx context.Context, stock *models.Stock) error
	DeleteStock(ctx context.Context, stockID string) error
	ListStocks(ctx context.Context) ([]*models.Stock, error)
	SearchStocks(ctx context.Context, query string) ([]*models.Stock, error)
}

// HoldingStore persists portfolio positions. Update and Delete are
// guarded: they take the version the caller read and fail with
// models.ErrVersionConflict when the row has moved on, so callers can
// retry the whole read-modify-write.
type HoldingStore interface {
	Get(ctx context.Context, userID, stockID string) (*models.Holding, error)
	Create(ctx context.Context, holding *models.Holding) error
	Update(ctx context.Context, holding *models.Holding, expectedVersion int) error
	Delete(ctx context.Context, userID, stockID string, expectedVersion int) error
	ListForUser(ctx context.Context, userID string) ([]*models.Holding, error)
}

// TransactionStore persists the append-only trade log.
type TransactionStore interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	ListForUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	ListByStock(ctx context.Context, stockID string) ([]*models.Transaction, error)
	ListAll(ctx context.Context) ([]*models.Transaction, error)
	Summarize(ctx context.Context, userID string) (*models.TransactionSummary, error)
}

// WatchlistStore persists per-user watchlists.
type WatchlistStore interface {
	Add(ctx context.Context, userID, stockID string) error
	Remove(ctx context.Context, userID, stockID string) error
	Contains(ctx context.Context, userID, stockID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]*models.WatchlistEntry, error)
}
