// Package trading executes buy and sell orders.
package trading

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.TradingService = (*Service)(nil)

// Service implements TradingService. An order flows through
// validation, a catalog lookup, the ledger mutation, and finally the
// transaction record. The ledger write commits the trade; a failure
// recording the transaction afterwards is logged loudly but does not
// roll the position back.
type Service struct {
	ledger       interfaces.LedgerService
	transactions interfaces.TransactionStore
	stocks       interfaces.StockStore
	logger       *common.Logger
}

// NewService creates a new trading service.
func NewService(ledger interfaces.LedgerService, transactions interfaces.TransactionStore, stocks interfaces.StockStore, logger *common.Logger) *Service {
	return &Service{
		ledger:       ledger,
		transactions: transactions,
		stocks:       stocks,
		logger:       logger,
	}
}

func validateOrder(quantity int64, price decimal.Decimal) error {
	if quantity <= 0 {
		return models.Validationf("Quantity must be a positive number")
	}
	if !price.IsPositive() {
		return models.Validationf("Price must be a positive number")
	}
	return nil
}

func (s *Service) lookupStock(ctx context.Context, stockID string) (*models.Stock, error) {
	stock, err := s.stocks.GetStock(ctx, stockID)
	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &models.NotFoundError{Resource: "Stock"}
		}
		return nil, err
	}
	return stock, nil
}

func (s *Service) record(ctx context.Context, userID string, stock *models.Stock, txType string, quantity int64, price decimal.Decimal) (*models.TransactionView, error) {
	tx := &models.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		StockID:       stock.StockID,
		Type:          txType,
		Quantity:      quantity,
		Price:         price,
		TotalAmount:   decimal.NewFromInt(quantity).Mul(price),
		Date:          time.Now().UTC(),
	}

	if err := s.transactions.Insert(ctx, tx); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("symbol", stock.Symbol).
			Str("type", txType).
			Msg("Position updated but transaction record failed")
		return nil, err
	}

	return &models.TransactionView{
		Transaction: *tx,
		Symbol:      stock.Symbol,
		Name:        stock.Name,
	}, nil
}

// Buy purchases quantity shares at price for the user.
func (s *Service) Buy(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.TransactionView, error) {
	if err := validateOrder(quantity, price); err != nil {
		return nil, err
	}

	stock, err := s.lookupStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.ApplyBuy(ctx, userID, stockID, quantity, price); err != nil {
		return nil, err
	}

	view, err := s.record(ctx, userID, stock, models.TransactionBuy, quantity, price)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", stock.Symbol).
		Int64("quantity", quantity).
		Str("price", price.String()).
		Msg("Buy executed")
	return view, nil
}

// Sell disposes of quantity shares at price for the user. The ledger
// checks sufficiency against the live position, so a stale read can
// never oversell.
func (s *Service) Sell(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.TransactionView, error) {
	if err := validateOrder(quantity, price); err != nil {
		return nil, err
	}

	stock, err := s.lookupStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.ApplySell(ctx, userID, stockID, quantity); err != nil {
		return nil, err
	}

	view, err := s.record(ctx, userID, stock, models.TransactionSell, quantity, price)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", stock.Symbol).
		Int64("quantity", quantity).
		Str("price", price.String()).
		Msg("Sell executed")
	return view, nil
}
