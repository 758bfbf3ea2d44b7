package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"gallerykeeper/internal/server/items"
	"gallerykeeper/internal/shared"

	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type statusResponse struct {
	Authenticated bool `json:"authenticated"`
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// errorResponse is the body of every non-2xx reply. Field is set only for
// validation failures.
type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, field string) {
	writeJSON(w, status, errorResponse{Message: message, Field: field})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required", "password")
		return
	}

	token, err := s.auth.IssueToken(req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrorInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid password", "")
			return
		}
		s.logger.Error(r.Context(), "Token issue failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
}

func (s *HTTPServer) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Authenticated: true})
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {

	list, err := s.items.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "Error listing items", "error", err.Error())
		writeError(w, http.StatusInternalServerError, storeErrorMessage(err, "Failed to fetch items"), "")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {

	var req items.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	item, err := s.items.Create(r.Context(), req)
	if err != nil {
		if ve := shared.AsValidationError(err); ve != nil {
			writeError(w, http.StatusBadRequest, ve.Message, ve.Field)
			return
		}
		s.logger.Error(r.Context(), "Error creating item", "error", err.Error())
		writeError(w, http.StatusInternalServerError, storeErrorMessage(err, "Failed to create item"), "")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Item ID is required", "id")
		return
	}

	if err := s.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		s.logger.Error(r.Context(), "Error deleting item", "error", err.Error())
		writeError(w, http.StatusInternalServerError, storeErrorMessage(err, "Failed to delete item"), "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {

	store := "connected"
	if err := s.items.Ping(r.Context()); err != nil {
		store = "disconnected"
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: store})
}

// storeErrorMessage returns an actionable message for configuration
// problems and the fallback for everything else.
func storeErrorMessage(err error, fallback string) string {
	if errors.Is(err, shared.ErrorStoreNotConfigured) {
		return "Storage is not configured. Set the S3 credentials and bucket environment variables."
	}
	return fallback
}
