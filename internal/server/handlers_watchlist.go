package server

import (
	"net/http"
)

type watchlistRequest struct {
	StockID string `json:"stock_id"`
}

// routeWatchlist dispatches /api/users/watchlist and
// /api/users/watchlist/{stockID}.
func (s *Server) routeWatchlist(w http.ResponseWriter, r *http.Request) {
	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if stockID := PathParam(r, "/api/users/watchlist/", ""); stockID != "" {
		if !RequireMethod(w, r, http.MethodDelete) {
			return
		}
		if err := s.app.Watchlist.Remove(r.Context(), uc.UserID, stockID); err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteSuccess(w, http.StatusOK, map[string]string{"message": "Stock removed from watchlist"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		entries, err := s.app.Watchlist.List(r.Context(), uc.UserID)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteSuccess(w, http.StatusOK, entries)

	case http.MethodPost:
		var req watchlistRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := s.app.Watchlist.Add(r.Context(), uc.UserID, req.StockID); err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteSuccess(w, http.StatusCreated, map[string]string{"message": "Stock added to watchlist"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
