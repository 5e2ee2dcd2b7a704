// Package ledger maintains portfolio holdings under the weighted
// average cost method.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.LedgerService = (*Service)(nil)

// maxRetries bounds the read-modify-write cycle when concurrent
// trades on the same position collide on the version guard.
const maxRetries = 5

// Service implements LedgerService on top of a guarded HoldingStore.
type Service struct {
	holdings interfaces.HoldingStore
	logger   *common.Logger
}

// NewService creates a new ledger service.
func NewService(holdings interfaces.HoldingStore, logger *common.Logger) *Service {
	return &Service{
		holdings: holdings,
		logger:   logger,
	}
}

// ApplyBuy records a purchase against the position. A first buy opens
// the position at the trade price; later buys blend the trade into the
// weighted average:
//
//	newAvg = (oldQty*oldAvg + qty*price) / (oldQty + qty)
//
// computed from the values read before the update.
func (s *Service) ApplyBuy(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.Holding, error) {
	if quantity <= 0 {
		return nil, models.Validationf("Quantity must be a positive number")
	}
	if !price.IsPositive() {
		return nil, models.Validationf("Price must be a positive number")
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		holding, err := s.holdings.Get(ctx, userID, stockID)
		if err != nil {
			var notFound *models.NotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}

			now := time.Now().UTC()
			created := &models.Holding{
				UserID:      userID,
				StockID:     stockID,
				Quantity:    quantity,
				AverageCost: price,
				CreatedAt:   now,
				ModifiedAt:  now,
			}
			if err := s.holdings.Create(ctx, created); err != nil {
				if errors.Is(err, models.ErrVersionConflict) {
					lastErr = err
					continue
				}
				return nil, err
			}
			return created, nil
		}

		oldQty := decimal.NewFromInt(holding.Quantity)
		addQty := decimal.NewFromInt(quantity)
		newQty := oldQty.Add(addQty)
		newAvg := oldQty.Mul(holding.AverageCost).
			Add(addQty.Mul(price)).
			Div(newQty)

		readVersion := holding.Version
		holding.Quantity += quantity
		holding.AverageCost = newAvg
		holding.ModifiedAt = time.Now().UTC()

		if err := s.holdings.Update(ctx, holding, readVersion); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return holding, nil
	}

	s.logger.Warn().
		Str("user_id", userID).
		Str("stock_id", stockID).
		Msg("Buy abandoned after repeated version conflicts")
	return nil, &models.StorageError{Op: "apply buy", Err: lastErr}
}

// ApplySell reduces the position. The average cost is left untouched;
// selling realizes gains or losses but never rewrites what the
// remaining shares cost. A sell that empties the position deletes the
// row, so a later buy starts a fresh position.
func (s *Service) ApplySell(ctx context.Context, userID, stockID string, quantity int64) (*models.Holding, error) {
	if quantity <= 0 {
		return nil, models.Validationf("Quantity must be a positive number")
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		holding, err := s.holdings.Get(ctx, userID, stockID)
		if err != nil {
			var notFound *models.NotFoundError
			if errors.As(err, &notFound) {
				return nil, models.Validationf("You do not own this stock")
			}
			return nil, err
		}

		if quantity > holding.Quantity {
			return nil, &models.InsufficientQuantityError{
				Requested: quantity,
				Available: holding.Quantity,
			}
		}

		readVersion := holding.Version

		if quantity == holding.Quantity {
			if err := s.holdings.Delete(ctx, userID, stockID, readVersion); err != nil {
				if errors.Is(err, models.ErrVersionConflict) {
					lastErr = err
					continue
				}
				return nil, err
			}
			holding.Quantity = 0
			return holding, nil
		}

		holding.Quantity -= quantity
		holding.ModifiedAt = time.Now().UTC()

		if err := s.holdings.Update(ctx, holding, readVersion); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return holding, nil
	}

	s.logger.Warn().
		Str("user_id", userID).
		Str("stock_id", stockID).
		Msg("Sell abandoned after repeated version conflicts")
	return nil, &models.StorageError{Op: "apply sell", Err: lastErr}
}

// GetHolding returns the open position for the pair, if any.
func (s *Service) GetHolding(ctx context.Context, userID, stockID string) (*models.Holding, error) {
	return s.holdings.Get(ctx, userID, stockID)
}

// ListForUser returns all open positions for a user.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	return s.holdings.ListForUser(ctx, userID)
}
