package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/models"
)

// LedgerService maintains holdings under the weighted-average cost
// method. Buys blend into the average, sells reduce quantity without
// touching it, and positions that reach zero are removed.
type LedgerService interface {
	ApplyBuy(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.Holding, error)
	ApplySell(ctx context.Context, userID, stockID string, quantity int64) (*models.Holding, error)
	GetHolding(ctx context.Context, userID, stockID string) (*models.Holding, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Holding, error)
}

// TradingService executes buy and sell orders end to end: validation,
// catalog lookup, ledger mutation, and the transaction record.
type TradingService interface {
	Buy(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.TransactionView, error)
	Sell(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.TransactionView, error)
}

// TransactionLogService reads the append-only trade history.
type TransactionLogService interface {
	ListForUser(ctx context.Context, userID string) ([]*models.TransactionView, error)
	ListByStock(ctx context.Context, stockID string) ([]*models.TransactionView, error)
	ListAll(ctx context.Context) ([]*models.TransactionView, error)
	Summarize(ctx context.Context, userID string) (*models.TransactionSummary, error)
}

// CatalogService manages the tradable stock catalog.
type CatalogService interface {
	List(ctx context.Context) ([]*models.Stock, error)
	Get(ctx context.Context, stockID string) (*models.Stock, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error)
	Search(ctx context.Context, query string) ([]*models.Stock, error)
	Create(ctx context.Context, stock *models.Stock) (*models.Stock, error)
	Update(ctx context.Context, stock *models.Stock) (*models.Stock, error)
	UpdatePrice(ctx context.Context, stockID string, price decimal.Decimal) (*models.Stock, error)
	Delete(ctx context.Context, stockID string) error
}

// PortfolioService values holdings against current catalog prices.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID string) ([]*models.PortfolioPosition, *models.PortfolioSummary, error)
}

// WatchlistService manages per-user watchlists.
type WatchlistService interface {
	Add(ctx context.Context, userID, stockID string) error
	Remove(ctx context.Context, userID, stockID string) error
	List(ctx context.Context, userID string) ([]*models.WatchlistEntry, error)
}

// ReportService renders portfolio charts.
type ReportService interface {
	RenderAllocationChart(ctx context.Context, userID string) ([]byte, error)
}

// Mailer sends account notifications. Callers deliver off the request
// path and log failures; a send error never fails the request that
// triggered it.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendWelcome(ctx context.Context, email, firstName string) error
	SendTransaction(ctx context.Context, email string, view *models.TransactionView) error
}
