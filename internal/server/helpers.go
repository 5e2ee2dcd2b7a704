package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
// Success is always false so clients can branch on the same field in
// every payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SuccessResponse wraps successful mutation payloads.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a wrapped success response.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteJSON(w, statusCode, SuccessResponse{Success: true, Data: data})
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteServiceError maps domain errors onto HTTP statuses. Validation
// and insufficient-quantity failures carry their message to the
// client; storage failures do not.
func WriteServiceError(w http.ResponseWriter, logger *common.Logger, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, ve.Msg)
		return
	}

	var iq *models.InsufficientQuantityError
	if errors.As(err, &iq) {
		WriteError(w, http.StatusBadRequest, iq.Error())
		return
	}

	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		WriteError(w, http.StatusNotFound, nf.Error())
		return
	}

	logger.Error().Err(err).Msg("Request failed")
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/admin/stocks/{id}/price, calling
// PathParam(r, "/api/admin/stocks/", "/price") extracts the {id} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// requireUser returns the authenticated user context or writes a 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*common.UserContext, bool) {
	uc := common.UserContextFromContext(r.Context())
	if uc == nil || uc.UserID == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return uc, true
}

// requireAdmin returns the authenticated admin context or writes a
// 401/403.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*common.UserContext, bool) {
	uc, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !uc.IsAdmin() {
		WriteError(w, http.StatusForbidden, "Admin access required")
		return nil, false
	}
	return uc, true
}
