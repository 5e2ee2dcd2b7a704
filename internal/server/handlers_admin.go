package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/models"
)

// routeAdminStocks dispatches /api/admin/stocks and
// /api/admin/stocks/{id}[/price].
func (s *Server) routeAdminStocks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/stocks")
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			s.adminListStocks(w, r)
		case http.MethodPost:
			s.adminCreateStock(w, r)
		default:
			RequireMethod(w, r, http.MethodGet, http.MethodPost)
		}
		return
	}

	if strings.HasSuffix(rest, "/price") {
		if !RequireMethod(w, r, http.MethodPatch) {
			return
		}
		s.adminUpdateStockPrice(w, r, strings.TrimSuffix(rest, "/price"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.adminUpdateStock(w, r, rest)
	case http.MethodDelete:
		s.adminDeleteStock(w, r, rest)
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) adminListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.app.Catalog.List(r.Context())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusOK, stocks)
}

func (s *Server) adminCreateStock(w http.ResponseWriter, r *http.Request) {
	var stock models.Stock
	if !DecodeJSON(w, r, &stock) {
		return
	}

	created, err := s.app.Catalog.Create(r.Context(), &stock)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, created)
}

func (s *Server) adminUpdateStock(w http.ResponseWriter, r *http.Request, stockID string) {
	var stock models.Stock
	if !DecodeJSON(w, r, &stock) {
		return
	}
	stock.StockID = stockID

	updated, err := s.app.Catalog.Update(r.Context(), &stock)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusOK, updated)
}

type priceRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (s *Server) adminUpdateStockPrice(w http.ResponseWriter, r *http.Request, stockID string) {
	var req priceRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	updated, err := s.app.Catalog.UpdatePrice(r.Context(), stockID, req.Price)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusOK, updated)
}

func (s *Server) adminDeleteStock(w http.ResponseWriter, r *http.Request, stockID string) {
	if err := s.app.Catalog.Delete(r.Context(), stockID); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]string{"message": "Stock deleted"})
}

// routeAdminUsers dispatches /api/admin/users and
// /api/admin/users/{id}[/role].
func (s *Server) routeAdminUsers(w http.ResponseWriter, r *http.Request) {
	admin, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users")
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		s.adminListUsers(w, r)
		return
	}

	if strings.HasSuffix(rest, "/role") {
		if !RequireMethod(w, r, http.MethodPut) {
			return
		}
		s.adminUpdateUserRole(w, r, strings.TrimSuffix(rest, "/role"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.adminGetUser(w, r, rest)
	case http.MethodDelete:
		s.adminDeleteUser(w, r, admin.UserID, rest)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.app.Storage.Users().ListUsers(r.Context())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	safe := make([]models.SafeUser, 0, len(users))
	for _, user := range users {
		safe = append(safe, user.Safe())
	}
	WriteSuccess(w, http.StatusOK, safe)
}

func (s *Server) adminGetUser(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := s.app.Storage.Users().GetUser(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusOK, user.Safe())
}

type roleRequest struct {
	Role string `json:"role"`
}

func (s *Server) adminUpdateUserRole(w http.ResponseWriter, r *http.Request, userID string) {
	var req roleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		WriteError(w, http.StatusBadRequest, "Role must be 'user' or 'admin'")
		return
	}

	users := s.app.Storage.Users()
	user, err := users.GetUser(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	user.Role = req.Role
	user.ModifiedAt = time.Now().UTC()
	if err := users.SaveUser(r.Context(), user); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.logger.Info().Str("user_id", userID).Str("role", req.Role).Msg("User role updated")
	WriteSuccess(w, http.StatusOK, user.Safe())
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request, adminID, userID string) {
	if userID == adminID {
		WriteError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	users := s.app.Storage.Users()
	if _, err := users.GetUser(r.Context(), userID); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	if err := users.DeleteUser(r.Context(), userID); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.logger.Info().Str("user_id", userID).Msg("User deleted")
	WriteSuccess(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// handleAdminTransactions handles GET /api/admin/transactions with an
// optional ?stock_id= filter.
func (s *Server) handleAdminTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	if stockID := r.URL.Query().Get("stock_id"); stockID != "" {
		views, err := s.app.Transactions.ListByStock(r.Context(), stockID)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteSuccess(w, http.StatusOK, views)
		return
	}

	views, err := s.app.Transactions.ListAll(r.Context())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteSuccess(w, http.StatusOK, views)
}

type adminStats struct {
	Users          int             `json:"users"`
	Admins         int             `json:"admins"`
	Stocks         int             `json:"stocks"`
	Transactions   int             `json:"transactions"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalSales     decimal.Decimal `json:"total_sales"`
}

// handleAdminStats handles GET /api/admin/stats.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	users, err := s.app.Storage.Users().ListUsers(r.Context())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	stocks, err := s.app.Catalog.List(r.Context())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	transactions, err := s.app.Transactions.ListAll(r.Context())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	stats := adminStats{
		Users:          len(users),
		Stocks:         len(stocks),
		Transactions:   len(transactions),
		TotalPurchases: decimal.Zero,
		TotalSales:     decimal.Zero,
	}
	for _, user := range users {
		if user.IsAdmin() {
			stats.Admins++
		}
	}
	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionBuy:
			stats.TotalPurchases = stats.TotalPurchases.Add(tx.TotalAmount)
		case models.TransactionSell:
			stats.TotalSales = stats.TotalSales.Add(tx.TotalAmount)
		}
	}

	WriteSuccess(w, http.StatusOK, stats)
}
