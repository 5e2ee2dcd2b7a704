package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/app"
	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// memStorage is an in-memory StorageManager mirroring the SurrealDB
// store semantics, including the holding version guard.
type memStorage struct {
	users        *memUsers
	stocks       *memStocks
	holdings     *memHoldings
	transactions *memTransactions
	watchlist    *memWatchlist
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:        &memUsers{rows: make(map[string]*models.User)},
		stocks:       &memStocks{rows: make(map[string]*models.Stock)},
		holdings:     &memHoldings{rows: make(map[string]*models.Holding)},
		transactions: &memTransactions{},
		watchlist:    &memWatchlist{rows: make(map[string]*models.WatchlistEntry)},
	}
}

func (m *memStorage) Users() interfaces.UserStore               { return m.users }
func (m *memStorage) Stocks() interfaces.StockStore             { return m.stocks }
func (m *memStorage) Holdings() interfaces.HoldingStore         { return m.holdings }
func (m *memStorage) Transactions() interfaces.TransactionStore { return m.transactions }
func (m *memStorage) Watchlist() interfaces.WatchlistStore      { return m.watchlist }
func (m *memStorage) Close() error                              { return nil }

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*models.User
}

func (m *memUsers) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, &models.NotFoundError{Resource: "user", ID: userID}
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user", ID: email}
}

func (m *memUsers) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.ResetTokenHash != "" && u.ResetTokenHash == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user"}
}

func (m *memUsers) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.rows[user.UserID] = &cp
	return nil
}

func (m *memUsers) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

func (m *memUsers) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, u := range m.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memUsers) CountByRole(ctx context.Context, role string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, u := range m.rows {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

type memStocks struct {
	mu   sync.Mutex
	rows map[string]*models.Stock
}

func (m *memStocks) GetStock(ctx context.Context, stockID string) (*models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[stockID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, &models.NotFoundError{Resource: "stock", ID: stockID}
}

func (m *memStocks) GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.Symbol == symbol {
			cp := *s
			return &cp, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "stock", ID: symbol}
}

func (m *memStocks) SaveStock(ctx context.Context, stock *models.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *stock
	m.rows[stock.StockID] = &cp
	return nil
}

func (m *memStocks) DeleteStock(ctx context.Context, stockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, stockID)
	return nil
}

func (m *memStocks) ListStocks(ctx context.Context) ([]*models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Stock
	for _, s := range m.rows {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *memStocks) SearchStocks(ctx context.Context, query string) ([]*models.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToUpper(query)
	var out []*models.Stock
	for _, s := range m.rows {
		if strings.Contains(strings.ToUpper(s.Symbol), q) || strings.Contains(strings.ToUpper(s.Name), q) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memHoldings struct {
	mu   sync.Mutex
	rows map[string]*models.Holding
}

func holdingKey(userID, stockID string) string { return userID + "_" + stockID }

func (m *memHoldings) Get(ctx context.Context, userID, stockID string) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.rows[holdingKey(userID, stockID)]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, &models.NotFoundError{Resource: "holding", ID: stockID}
}

func (m *memHoldings) Create(ctx context.Context, holding *models.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := holdingKey(holding.UserID, holding.StockID)
	if _, ok := m.rows[k]; ok {
		return models.ErrVersionConflict
	}
	holding.Version = 1
	cp := *holding
	m.rows[k] = &cp
	return nil
}

func (m *memHoldings) Update(ctx context.Context, holding *models.Holding, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := holdingKey(holding.UserID, holding.StockID)
	existing, ok := m.rows[k]
	if !ok || existing.Version != expectedVersion {
		return models.ErrVersionConflict
	}
	holding.Version = expectedVersion + 1
	cp := *holding
	m.rows[k] = &cp
	return nil
}

func (m *memHoldings) Delete(ctx context.Context, userID, stockID string, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := holdingKey(userID, stockID)
	existing, ok := m.rows[k]
	if !ok || existing.Version != expectedVersion {
		return models.ErrVersionConflict
	}
	delete(m.rows, k)
	return nil
}

func (m *memHoldings) ListForUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Holding
	for _, h := range m.rows {
		if h.UserID == userID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memTransactions struct {
	mu   sync.Mutex
	rows []*models.Transaction
}

func (m *memTransactions) Insert(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memTransactions) filter(match func(*models.Transaction) bool) []*models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range m.rows {
		if match(tx) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *memTransactions) ListForUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return m.filter(func(tx *models.Transaction) bool { return tx.UserID == userID }), nil
}

func (m *memTransactions) ListByStock(ctx context.Context, stockID string) ([]*models.Transaction, error) {
	return m.filter(func(tx *models.Transaction) bool { return tx.StockID == stockID }), nil
}

func (m *memTransactions) ListAll(ctx context.Context) ([]*models.Transaction, error) {
	return m.filter(func(tx *models.Transaction) bool { return true }), nil
}

func (m *memTransactions) Summarize(ctx context.Context, userID string) (*models.TransactionSummary, error) {
	rows, _ := m.ListForUser(ctx, userID)
	summary := &models.TransactionSummary{TotalTransactions: len(rows)}
	for _, tx := range rows {
		switch tx.Type {
		case models.TransactionBuy:
			summary.TotalPurchases = summary.TotalPurchases.Add(tx.TotalAmount)
		case models.TransactionSell:
			summary.TotalSales = summary.TotalSales.Add(tx.TotalAmount)
		}
	}
	return summary, nil
}

type memWatchlist struct {
	mu   sync.Mutex
	rows map[string]*models.WatchlistEntry
}

func (m *memWatchlist) Add(ctx context.Context, userID, stockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[holdingKey(userID, stockID)] = &models.WatchlistEntry{
		UserID:  userID,
		StockID: stockID,
		AddedAt: time.Now().UTC(),
	}
	return nil
}

func (m *memWatchlist) Remove(ctx context.Context, userID, stockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, holdingKey(userID, stockID))
	return nil
}

func (m *memWatchlist) Contains(ctx context.Context, userID, stockID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[holdingKey(userID, stockID)]
	return ok, nil
}

func (m *memWatchlist) ListForUser(ctx context.Context, userID string) ([]*models.WatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.WatchlistEntry
	for _, e := range m.rows {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recordingMailer captures notifications for assertions. Setting err
// makes every send fail.
type recordingMailer struct {
	mu   sync.Mutex
	err  error
	sent []string
}

var _ interfaces.Mailer = (*recordingMailer)(nil)

func (m *recordingMailer) record(entry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, entry)
	return nil
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return m.record("reset:" + email)
}

func (m *recordingMailer) SendWelcome(ctx context.Context, email, firstName string) error {
	return m.record("welcome:" + email)
}

func (m *recordingMailer) SendTransaction(ctx context.Context, email string, view *models.TransactionView) error {
	return m.record("transaction:" + email + ":" + view.Type)
}

func (m *recordingMailer) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *recordingMailer) contains(entry string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sent {
		if s == entry {
			return true
		}
	}
	return false
}

// harness bundles a server over in-memory storage for handler tests.
type harness struct {
	t       *testing.T
	server  *Server
	storage *memStorage
	mailer  *recordingMailer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = "test-secret"
	config.Auth.LoginBurst = 100

	storage := newMemStorage()
	a := app.NewAppWithStorage(config, common.NewSilentLogger(), storage)

	mailer := &recordingMailer{}
	a.Mailer = mailer

	return &harness{
		t:       t,
		server:  NewServer(a),
		storage: storage,
		mailer:  mailer,
	}
}

// do issues a request against the full middleware chain.
func (h *harness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "198.51.100.7:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

// decode unwraps a SuccessResponse payload into v.
func (h *harness) decode(rec *httptest.ResponseRecorder, v interface{}) {
	h.t.Helper()

	var wrapper struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &wrapper))
	require.True(h.t, wrapper.Success)
	if v != nil {
		require.NoError(h.t, json.Unmarshal(wrapper.Data, v))
	}
}

func (h *harness) errorMessage(rec *httptest.ResponseRecorder) string {
	h.t.Helper()
	var resp ErrorResponse
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(h.t, resp.Success)
	return resp.Error
}

// register creates an account and returns its bearer token. The first
// account in a fresh harness is the admin.
func (h *harness) register(email, password string) string {
	h.t.Helper()

	rec := h.do(http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authResponse
	h.decode(rec, &resp)
	require.NotEmpty(h.t, resp.Token)
	return resp.Token
}

// seedStock inserts a stock directly into storage and returns its id.
func (h *harness) seedStock(symbol, name, price string) string {
	h.t.Helper()

	stock := &models.Stock{
		StockID:      "stock-" + strings.ToLower(symbol),
		Symbol:       symbol,
		Name:         name,
		CurrentPrice: decimal.RequireFromString(price),
		CreatedAt:    time.Now().UTC(),
		ModifiedAt:   time.Now().UTC(),
	}
	require.NoError(h.t, h.storage.stocks.SaveStock(context.Background(), stock))
	return stock.StockID
}
