package watchlist

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

type memWatchlist struct {
	entries map[string]*models.WatchlistEntry
}

func newMemWatchlist() *memWatchlist {
	return &memWatchlist{entries: make(map[string]*models.WatchlistEntry)}
}

func key(userID, stockID string) string { return userID + "_" + stockID }

func (m *memWatchlist) Add(ctx context.Context, userID, stockID string) error {
	m.entries[key(userID, stockID)] = &models.WatchlistEntry{
		UserID:  userID,
		StockID: stockID,
		AddedAt: time.Now().UTC(),
	}
	return nil
}

func (m *memWatchlist) Remove(ctx context.Context, userID, stockID string) error {
	delete(m.entries, key(userID, stockID))
	return nil
}

func (m *memWatchlist) Contains(ctx context.Context, userID, stockID string) (bool, error) {
	_, ok := m.entries[key(userID, stockID)]
	return ok, nil
}

func (m *memWatchlist) ListForUser(ctx context.Context, userID string) ([]*models.WatchlistEntry, error) {
	var out []*models.WatchlistEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
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

func newTestService() (*Service, *memWatchlist) {
	store := newMemWatchlist()
	stocks := &stubStocks{rows: map[string]*models.Stock{
		"s1": {
			StockID:       "s1",
			Symbol:        "AAPL",
			Name:          "Apple Inc.",
			CurrentPrice:  decimal.RequireFromString("150"),
			PreviousClose: decimal.RequireFromString("148"),
		},
	}}
	return NewService(store, stocks, common.NewSilentLogger()), store
}

func TestAdd(t *testing.T) {
	svc, store := newTestService()

	require.NoError(t, svc.Add(context.Background(), "u1", "s1"))
	assert.Len(t, store.entries, 1)
}

func TestAdd_UnknownStock(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Add(context.Background(), "u1", "missing")
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Stock not found", nf.Error())
}

func TestAdd_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u1", "s1"))

	err := svc.Add(ctx, "u1", "s1")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Stock already in watchlist", ve.Msg)
}

func TestRemove_NotWatched(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Remove(context.Background(), "u1", "s1")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Stock not found in watchlist", ve.Msg)
}

func TestList_JoinsQuotes(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u1", "s1"))
	// Stale entry pointing at a delisted stock.
	store.entries["u1_gone"] = &models.WatchlistEntry{UserID: "u1", StockID: "gone"}

	entries, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "AAPL", entries[0].Symbol)
	assert.True(t, entries[0].CurrentPrice.Equal(decimal.RequireFromString("150")))
}
