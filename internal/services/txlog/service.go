// Package txlog reads the append-only trade history.
package txlog

import (
	"context"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.TransactionLogService = (*Service)(nil)

// Service implements TransactionLogService. Display fields are joined
// in from the catalog per request; the log itself stores only ids.
type Service struct {
	transactions interfaces.TransactionStore
	stocks       interfaces.StockStore
	users        interfaces.UserStore
	logger       *common.Logger
}

// NewService creates a new transaction log service.
func NewService(transactions interfaces.TransactionStore, stocks interfaces.StockStore, users interfaces.UserStore, logger *common.Logger) *Service {
	return &Service{
		transactions: transactions,
		stocks:       stocks,
		users:        users,
		logger:       logger,
	}
}

func (s *Service) stockIndex(ctx context.Context) (map[string]*models.Stock, error) {
	stocks, err := s.stocks.ListStocks(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*models.Stock, len(stocks))
	for _, stock := range stocks {
		index[stock.StockID] = stock
	}
	return index, nil
}

func (s *Service) join(rows []*models.Transaction, stocks map[string]*models.Stock, emails map[string]string) []*models.TransactionView {
	views := make([]*models.TransactionView, 0, len(rows))
	for _, tx := range rows {
		view := &models.TransactionView{Transaction: *tx}
		if stock, ok := stocks[tx.StockID]; ok {
			view.Symbol = stock.Symbol
			view.Name = stock.Name
		}
		if emails != nil {
			view.UserEmail = emails[tx.UserID]
		}
		views = append(views, view)
	}
	return views
}

// ListForUser returns a user's trades, most recent first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.TransactionView, error) {
	rows, err := s.transactions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stocks, err := s.stockIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(rows, stocks, nil), nil
}

// ListByStock returns all trades in one stock, most recent first.
func (s *Service) ListByStock(ctx context.Context, stockID string) ([]*models.TransactionView, error) {
	rows, err := s.transactions.ListByStock(ctx, stockID)
	if err != nil {
		return nil, err
	}
	stocks, err := s.stockIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(rows, stocks, nil), nil
}

// ListAll returns every trade in the system with owning user emails,
// for admin reporting.
func (s *Service) ListAll(ctx context.Context) ([]*models.TransactionView, error) {
	rows, err := s.transactions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stocks, err := s.stockIndex(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	emails := make(map[string]string, len(users))
	for _, user := range users {
		emails[user.UserID] = user.Email
	}

	return s.join(rows, stocks, emails), nil
}

// Summarize aggregates a user's trade totals.
func (s *Service) Summarize(ctx context.Context, userID string) (*models.TransactionSummary, error) {
	return s.transactions.Summarize(ctx, userID)
}
