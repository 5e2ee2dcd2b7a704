package server

import (
	"net/http"
	"time"

	"github.com/stocksim/stocksim/internal/common"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/me", s.handleAuthMe)
	mux.HandleFunc("/api/auth/update-password", s.handleUpdatePassword)
	mux.HandleFunc("/api/auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("/api/auth/reset-password", s.handleResetPassword)

	// User trading surface
	mux.HandleFunc("/api/users/buy", s.handleBuy)
	mux.HandleFunc("/api/users/sell", s.handleSell)
	mux.HandleFunc("/api/users/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/users/portfolio/chart", s.handlePortfolioChart)
	mux.HandleFunc("/api/users/transactions", s.handleTransactions)
	mux.HandleFunc("/api/users/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/users/watchlist", s.routeWatchlist)
	mux.HandleFunc("/api/users/watchlist/", s.routeWatchlist)

	// Stock catalog
	mux.HandleFunc("/api/stocks", s.handleStockList)
	mux.HandleFunc("/api/stocks/", s.handleStockGet)

	// Admin
	mux.HandleFunc("/api/admin/stocks", s.routeAdminStocks)
	mux.HandleFunc("/api/admin/stocks/", s.routeAdminStocks)
	mux.HandleFunc("/api/admin/users", s.routeAdminUsers)
	mux.HandleFunc("/api/admin/users/", s.routeAdminUsers)
	mux.HandleFunc("/api/admin/transactions", s.handleAdminTransactions)
	mux.HandleFunc("/api/admin/stats", s.handleAdminStats)
}
