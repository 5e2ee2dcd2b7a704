package server

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/models"
)

type orderRequest struct {
	StockID  string          `json:"stock_id"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// handleBuy handles POST /api/users/buy.
func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	view, err := s.app.Trading.Buy(r.Context(), uc.UserID, req.StockID, req.Quantity, req.Price)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.notify("Trade confirmation", func(ctx context.Context) error {
		return s.app.Mailer.SendTransaction(ctx, uc.Email, view)
	})

	WriteSuccess(w, http.StatusCreated, view)
}

// handleSell handles POST /api/users/sell.
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	view, err := s.app.Trading.Sell(r.Context(), uc.UserID, req.StockID, req.Quantity, req.Price)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.notify("Trade confirmation", func(ctx context.Context) error {
		return s.app.Mailer.SendTransaction(ctx, uc.Email, view)
	})

	WriteSuccess(w, http.StatusOK, view)
}

type portfolioResponse struct {
	Positions []*models.PortfolioPosition `json:"positions"`
	Summary   *models.PortfolioSummary   `json:"summary"`
}

// handlePortfolio handles GET /api/users/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	positions, summary, err := s.app.Portfolio.GetPortfolio(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, portfolioResponse{Positions: positions, Summary: summary})
}

// handlePortfolioChart handles GET /api/users/portfolio/chart.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	png, err := s.app.Reports.RenderAllocationChart(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleTransactions handles GET /api/users/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	views, err := s.app.Transactions.ListForUser(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, views)
}

type dashboardResponse struct {
	Portfolio          portfolioResponse          `json:"portfolio"`
	TransactionSummary *models.TransactionSummary `json:"transaction_summary"`
	RecentTransactions []*models.TransactionView  `json:"recent_transactions"`
	Watchlist          []*models.WatchlistEntry   `json:"watchlist"`
}

// handleDashboard handles GET /api/users/dashboard. It bundles the
// valued portfolio, trade totals, the five most recent trades, and
// the watchlist in one response.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	positions, summary, err := s.app.Portfolio.GetPortfolio(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	txSummary, err := s.app.Transactions.Summarize(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	recent, err := s.app.Transactions.ListForUser(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	watching, err := s.app.Watchlist.List(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dashboardResponse{
		Portfolio:          portfolioResponse{Positions: positions, Summary: summary},
		TransactionSummary: txSummary,
		RecentTransactions: recent,
		Watchlist:          watching,
	})
}
