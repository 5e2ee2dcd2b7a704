package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

type StockStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewStockStore(db *surrealdb.DB, logger *common.Logger) *StockStore {
	return &StockStore{
		db:     db,
		logger: logger,
	}
}

func (s *StockStore) GetStock(ctx context.Context, stockID string) (*models.Stock, error) {
	stock, err := surrealdb.Select[models.Stock](ctx, s.db, surrealmodels.NewRecordID("stock", stockID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, &models.NotFoundError{Resource: "stock", ID: stockID}
		}
		return nil, &models.StorageError{Op: "select stock", Err: err}
	}
	if stock == nil || stock.StockID == "" {
		return nil, &models.NotFoundError{Resource: "stock", ID: stockID}
	}
	return stock, nil
}

func (s *StockStore) GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	sql := "SELECT * FROM stock WHERE symbol = $symbol LIMIT 1"
	vars := map[string]any{"symbol": strings.ToUpper(strings.TrimSpace(symbol))}

	results, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: "select stock by symbol", Err: err}
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, &models.NotFoundError{Resource: "stock", ID: symbol}
}

func (s *StockStore) SaveStock(ctx context.Context, stock *models.Stock) error {
	sql := "UPSERT $rid CONTENT $stock"
	vars := map[string]any{
		"rid":   surrealmodels.NewRecordID("stock", stock.StockID),
		"stock": stock,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return &models.StorageError{Op: "save stock", Err: fmt.Errorf("after retries: %w", lastErr)}
}

func (s *StockStore) DeleteStock(ctx context.Context, stockID string) error {
	_, err := surrealdb.Delete[models.Stock](ctx, s.db, surrealmodels.NewRecordID("stock", stockID))
	if err != nil && !isNotFoundError(err) {
		return &models.StorageError{Op: "delete stock", Err: err}
	}
	return nil
}

func (s *StockStore) ListStocks(ctx context.Context) ([]*models.Stock, error) {
	sql := "SELECT * FROM stock ORDER BY symbol ASC"

	results, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, nil)
	if err != nil {
		return nil, &models.StorageError{Op: "list stocks", Err: err}
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Stock
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *StockStore) SearchStocks(ctx context.Context, query string) ([]*models.Stock, error) {
	sql := "SELECT * FROM stock WHERE string::uppercase(symbol) CONTAINS $q OR string::uppercase(name) CONTAINS $q ORDER BY symbol ASC"
	vars := map[string]any{"q": strings.ToUpper(strings.TrimSpace(query))}

	results, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: "search stocks", Err: err}
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Stock
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
