// Package valuation marks holdings to market against catalog prices.
package valuation

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// hundred is the percent scale factor.
var hundred = decimal.NewFromInt(100)

// Service implements PortfolioService.
type Service struct {
	holdings interfaces.HoldingStore
	stocks   interfaces.StockStore
	logger   *common.Logger
}

// NewService creates a new valuation service.
func NewService(holdings interfaces.HoldingStore, stocks interfaces.StockStore, logger *common.Logger) *Service {
	return &Service{
		holdings: holdings,
		stocks:   stocks,
		logger:   logger,
	}
}

// ValuePosition computes the point-in-time value of one holding at the
// given price. The percent is relative to cost basis and reported as
// zero when the basis is zero.
func ValuePosition(holding *models.Holding, price decimal.Decimal) models.PositionValue {
	costBasis := holding.CostBasis()
	currentValue := decimal.NewFromInt(holding.Quantity).Mul(price)
	profitLoss := currentValue.Sub(costBasis)

	percent := decimal.Zero
	if costBasis.IsPositive() {
		percent = profitLoss.Div(costBasis).Mul(hundred)
	}

	return models.PositionValue{
		CurrentValue:      currentValue,
		CostBasis:         costBasis,
		ProfitLoss:        profitLoss,
		ProfitLossPercent: percent,
	}
}

// Summarize totals position values across a portfolio. The aggregate
// percent uses the same zero-basis guard as individual positions.
func Summarize(positions []*models.PortfolioPosition) *models.PortfolioSummary {
	summary := &models.PortfolioSummary{
		TotalValue:        decimal.Zero,
		TotalCost:         decimal.Zero,
		TotalProfitLoss:   decimal.Zero,
		ProfitLossPercent: decimal.Zero,
	}

	for _, p := range positions {
		summary.TotalValue = summary.TotalValue.Add(p.CurrentValue)
		summary.TotalCost = summary.TotalCost.Add(p.CostBasis)
	}
	summary.TotalProfitLoss = summary.TotalValue.Sub(summary.TotalCost)
	if summary.TotalCost.IsPositive() {
		summary.ProfitLossPercent = summary.TotalProfitLoss.Div(summary.TotalCost).Mul(hundred)
	}
	return summary
}

// GetPortfolio values every open position for a user against current
// catalog prices, ordered by symbol. A stock missing from the catalog
// is skipped rather than failing the whole portfolio.
func (s *Service) GetPortfolio(ctx context.Context, userID string) ([]*models.PortfolioPosition, *models.PortfolioSummary, error) {
	holdings, err := s.holdings.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	positions := make([]*models.PortfolioPosition, 0, len(holdings))
	for _, holding := range holdings {
		stock, err := s.stocks.GetStock(ctx, holding.StockID)
		if err != nil {
			var notFound *models.NotFoundError
			if errors.As(err, &notFound) {
				s.logger.Warn().
					Str("stock_id", holding.StockID).
					Msg("Holding references unknown stock, skipping")
				continue
			}
			return nil, nil, err
		}

		positions = append(positions, &models.PortfolioPosition{
			HoldingView: models.HoldingView{
				Holding:      *holding,
				Symbol:       stock.Symbol,
				Name:         stock.Name,
				CurrentPrice: stock.CurrentPrice,
			},
			PositionValue: ValuePosition(holding, stock.CurrentPrice),
		})
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	return positions, Summarize(positions), nil
}
