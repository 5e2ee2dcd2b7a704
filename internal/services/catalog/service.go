// Package catalog manages the tradable stock universe.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.CatalogService = (*Service)(nil)

// Service implements CatalogService.
type Service struct {
	stocks interfaces.StockStore
	logger *common.Logger
}

// NewService creates a new catalog service.
func NewService(stocks interfaces.StockStore, logger *common.Logger) *Service {
	return &Service{
		stocks: stocks,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*models.Stock, error) {
	return s.stocks.ListStocks(ctx)
}

func (s *Service) Get(ctx context.Context, stockID string) (*models.Stock, error) {
	return s.stocks.GetStock(ctx, stockID)
}

func (s *Service) GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	return s.stocks.GetStockBySymbol(ctx, symbol)
}

func (s *Service) Search(ctx context.Context, query string) ([]*models.Stock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.stocks.ListStocks(ctx)
	}
	return s.stocks.SearchStocks(ctx, query)
}

func validateStock(stock *models.Stock) error {
	if strings.TrimSpace(stock.Symbol) == "" {
		return models.Validationf("Symbol is required")
	}
	if strings.TrimSpace(stock.Name) == "" {
		return models.Validationf("Name is required")
	}
	if !stock.CurrentPrice.IsPositive() {
		return models.Validationf("Price must be a positive number")
	}
	return nil
}

// Create adds a stock to the catalog. Symbols are uppercased and must
// be unique.
func (s *Service) Create(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	stock.Symbol = strings.ToUpper(strings.TrimSpace(stock.Symbol))
	stock.Name = strings.TrimSpace(stock.Name)
	if err := validateStock(stock); err != nil {
		return nil, err
	}

	existing, err := s.stocks.GetStockBySymbol(ctx, stock.Symbol)
	if err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	if existing != nil {
		return nil, models.Validationf("Stock with this symbol already exists")
	}

	now := time.Now().UTC()
	stock.StockID = uuid.NewString()
	stock.CreatedAt = now
	stock.ModifiedAt = now
	if stock.PreviousClose.IsZero() {
		stock.PreviousClose = stock.CurrentPrice
	}

	if err := s.stocks.SaveStock(ctx, stock); err != nil {
		return nil, err
	}

	s.logger.Info().Str("symbol", stock.Symbol).Msg("Stock created")
	return stock, nil
}

// Update replaces the mutable fields of an existing stock.
func (s *Service) Update(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	existing, err := s.stocks.GetStock(ctx, stock.StockID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(stock.Symbol) != "" {
		existing.Symbol = strings.ToUpper(strings.TrimSpace(stock.Symbol))
	}
	if strings.TrimSpace(stock.Name) != "" {
		existing.Name = strings.TrimSpace(stock.Name)
	}
	if stock.CurrentPrice.IsPositive() {
		existing.CurrentPrice = stock.CurrentPrice
	}
	if stock.PreviousClose.IsPositive() {
		existing.PreviousClose = stock.PreviousClose
	}
	if stock.MarketCap.IsPositive() {
		existing.MarketCap = stock.MarketCap
	}
	if stock.Volume > 0 {
		existing.Volume = stock.Volume
	}
	if stock.Description != "" {
		existing.Description = stock.Description
	}
	existing.ModifiedAt = time.Now().UTC()

	if err := s.stocks.SaveStock(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// UpdatePrice moves the quote, rolling the old price into
// PreviousClose so day change stays meaningful.
func (s *Service) UpdatePrice(ctx context.Context, stockID string, price decimal.Decimal) (*models.Stock, error) {
	if !price.IsPositive() {
		return nil, models.Validationf("Price must be a positive number")
	}

	stock, err := s.stocks.GetStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	stock.PreviousClose = stock.CurrentPrice
	stock.CurrentPrice = price
	stock.ModifiedAt = time.Now().UTC()

	if err := s.stocks.SaveStock(ctx, stock); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", stock.Symbol).
		Str("price", price.String()).
		Msg("Stock price updated")
	return stock, nil
}

func (s *Service) Delete(ctx context.Context, stockID string) error {
	if _, err := s.stocks.GetStock(ctx, stockID); err != nil {
		return err
	}
	return s.stocks.DeleteStock(ctx, stockID)
}
