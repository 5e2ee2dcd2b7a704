// Package watchlist manages per-user stock watchlists.
package watchlist

import (
	"context"
	"errors"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService.
type Service struct {
	watchlist interfaces.WatchlistStore
	stocks    interfaces.StockStore
	logger    *common.Logger
}

// NewService creates a new watchlist service.
func NewService(watchlist interfaces.WatchlistStore, stocks interfaces.StockStore, logger *common.Logger) *Service {
	return &Service{
		watchlist: watchlist,
		stocks:    stocks,
		logger:    logger,
	}
}

// Add puts a stock on the user's watchlist. The stock must exist and
// must not already be watched.
func (s *Service) Add(ctx context.Context, userID, stockID string) error {
	if _, err := s.stocks.GetStock(ctx, stockID); err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			return &models.NotFoundError{Resource: "Stock"}
		}
		return err
	}

	watched, err := s.watchlist.Contains(ctx, userID, stockID)
	if err != nil {
		return err
	}
	if watched {
		return models.Validationf("Stock already in watchlist")
	}

	if err := s.watchlist.Add(ctx, userID, stockID); err != nil {
		return err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("stock_id", stockID).
		Msg("Watchlist entry added")
	return nil
}

// Remove takes a stock off the user's watchlist.
func (s *Service) Remove(ctx context.Context, userID, stockID string) error {
	watched, err := s.watchlist.Contains(ctx, userID, stockID)
	if err != nil {
		return err
	}
	if !watched {
		return models.Validationf("Stock not found in watchlist")
	}
	return s.watchlist.Remove(ctx, userID, stockID)
}

// List returns the user's watchlist joined with current stock quotes.
// Entries whose stock has left the catalog are dropped from the view.
func (s *Service) List(ctx context.Context, userID string) ([]*models.WatchlistEntry, error) {
	entries, err := s.watchlist.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.WatchlistEntry, 0, len(entries))
	for _, entry := range entries {
		stock, err := s.stocks.GetStock(ctx, entry.StockID)
		if err != nil {
			var notFound *models.NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		entry.Symbol = stock.Symbol
		entry.Name = stock.Name
		entry.CurrentPrice = stock.CurrentPrice
		entry.PreviousClose = stock.PreviousClose
		out = append(out, entry)
	}
	return out, nil
}
