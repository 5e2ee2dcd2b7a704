package server

import (
	"net/http"
)

// handleStockList handles GET /api/stocks and GET /api/stocks?q=term.
func (s *Server) handleStockList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	query := r.URL.Query().Get("q")
	stocks, err := s.app.Catalog.Search(r.Context(), query)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, stocks)
}

// handleStockGet handles GET /api/stocks/{id}.
func (s *Server) handleStockGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	stockID := PathParam(r, "/api/stocks/", "")
	if stockID == "" {
		WriteError(w, http.StatusBadRequest, "Stock id is required")
		return
	}

	stock, err := s.app.Catalog.Get(r.Context(), stockID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, stock)
}
