package trading

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

type stubLedger struct {
	holdings map[string]*models.Holding
}

func ledgerKey(userID, stockID string) string { return userID + "_" + stockID }

func (l *stubLedger) ApplyBuy(ctx context.Context, userID, stockID string, quantity int64, price decimal.Decimal) (*models.Holding, error) {
	k := ledgerKey(userID, stockID)
	h, ok := l.holdings[k]
	if !ok {
		h = &models.Holding{UserID: userID, StockID: stockID, AverageCost: price}
		l.holdings[k] = h
	}
	h.Quantity += quantity
	return h, nil
}

func (l *stubLedger) ApplySell(ctx context.Context, userID, stockID string, quantity int64) (*models.Holding, error) {
	h, ok := l.holdings[ledgerKey(userID, stockID)]
	if !ok {
		return nil, models.Validationf("You do not own this stock")
	}
	if quantity > h.Quantity {
		return nil, &models.InsufficientQuantityError{Requested: quantity, Available: h.Quantity}
	}
	h.Quantity -= quantity
	return h, nil
}

func (l *stubLedger) GetHolding(ctx context.Context, userID, stockID string) (*models.Holding, error) {
	if h, ok := l.holdings[ledgerKey(userID, stockID)]; ok {
		return h, nil
	}
	return nil, &models.NotFoundError{Resource: "holding", ID: stockID}
}

func (l *stubLedger) ListForUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	return nil, nil
}

type stubStocks struct {
	rows map[string]*models.Stock
}

func (s *stubStocks) GetStock(ctx context.Context, stockID string) (*models.Stock, error) {
	if stock, ok := s.rows[stockID]; ok {
		return stock, nil
	}
	return nil, &models.NotFoundError{Resource: "stock", ID: stockID}
}

func (s *stubStocks) GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	return nil, &models.NotFoundError{Resource: "stock", ID: symbol}
}
func (s *stubStocks) SaveStock(ctx context.Context, stock *models.Stock) error { return nil }
func (s *stubStocks) DeleteStock(ctx context.Context, stockID string) error    { return nil }
func (s *stubStocks) ListStocks(ctx context.Context) ([]*models.Stock, error)  { return nil, nil }
func (s *stubStocks) SearchStocks(ctx context.Context, query string) ([]*models.Stock, error) {
	return nil, nil
}

type memTransactions struct {
	rows []*models.Transaction
}

func (m *memTransactions) Insert(ctx context.Context, tx *models.Transaction) error {
	m.rows = append(m.rows, tx)
	return nil
}

func (m *memTransactions) ListForUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return m.rows, nil
}

func (m *memTransactions) ListByStock(ctx context.Context, stockID string) ([]*models.Transaction, error) {
	return m.rows, nil
}

func (m *memTransactions) ListAll(ctx context.Context) ([]*models.Transaction, error) {
	return m.rows, nil
}

func (m *memTransactions) Summarize(ctx context.Context, userID string) (*models.TransactionSummary, error) {
	return &models.TransactionSummary{TotalTransactions: len(m.rows)}, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService() (*Service, *stubLedger, *memTransactions) {
	ledger := &stubLedger{holdings: make(map[string]*models.Holding)}
	stocks := &stubStocks{rows: map[string]*models.Stock{
		"s1": {StockID: "s1", Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: d("110")},
	}}
	transactions := &memTransactions{}
	svc := NewService(ledger, transactions, stocks, common.NewSilentLogger())
	return svc, ledger, transactions
}

func TestBuy(t *testing.T) {
	svc, ledger, transactions := newTestService()

	view, err := svc.Buy(context.Background(), "u1", "s1", 10, d("100"))
	require.NoError(t, err)

	assert.Equal(t, models.TransactionBuy, view.Type)
	assert.Equal(t, "AAPL", view.Symbol)
	assert.Equal(t, int64(10), view.Quantity)
	assert.True(t, view.TotalAmount.Equal(d("1000")))
	assert.NotEmpty(t, view.TransactionID)

	require.Len(t, transactions.rows, 1)
	assert.Equal(t, int64(10), ledger.holdings["u1_s1"].Quantity)
}

func TestBuy_UnknownStock(t *testing.T) {
	svc, _, transactions := newTestService()

	_, err := svc.Buy(context.Background(), "u1", "nope", 10, d("100"))
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Stock not found", nf.Error())
	assert.Empty(t, transactions.rows)
}

func TestBuy_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	var ve *models.ValidationError

	_, err := svc.Buy(ctx, "u1", "s1", 0, d("100"))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Quantity must be a positive number", ve.Msg)

	_, err = svc.Buy(ctx, "u1", "s1", 10, d("-1"))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Price must be a positive number", ve.Msg)
}

func TestSell(t *testing.T) {
	svc, _, transactions := newTestService()
	ctx := context.Background()

	_, err := svc.Buy(ctx, "u1", "s1", 10, d("100"))
	require.NoError(t, err)

	view, err := svc.Sell(ctx, "u1", "s1", 4, d("120"))
	require.NoError(t, err)

	assert.Equal(t, models.TransactionSell, view.Type)
	assert.True(t, view.TotalAmount.Equal(d("480")))
	assert.Len(t, transactions.rows, 2)
}

func TestSell_Insufficient_NoTransactionRecorded(t *testing.T) {
	svc, _, transactions := newTestService()
	ctx := context.Background()

	_, err := svc.Buy(ctx, "u1", "s1", 3, d("100"))
	require.NoError(t, err)

	_, err = svc.Sell(ctx, "u1", "s1", 5, d("120"))
	var iq *models.InsufficientQuantityError
	require.ErrorAs(t, err, &iq)
	assert.Equal(t, int64(3), iq.Available)

	// Only the buy is in the log.
	assert.Len(t, transactions.rows, 1)
}

func TestSell_NoPosition(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Sell(context.Background(), "u1", "s1", 1, d("100"))
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "You do not own this stock", ve.Msg)
}
