package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	applog "spendsight/internal/log"
	"strings"

	"spendsight/internal/storage"
)

type createCategoryRequest struct {
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateCategory(w, r)
	case http.MethodGet:
		s.handleListCategories(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.OwnerID = sanitizeInput(req.OwnerID)
	req.Name = sanitizeInput(req.Name)
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, err := s.store.CreateCategory(r.Context(), req.OwnerID, req.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category",
			applog.FieldError, err,
			applog.FieldOwnerID, req.OwnerID,
			"category", req.Name)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID := sanitizeInput(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}

	categories, err := s.store.ListCategories(r.Context(), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", applog.FieldError, err, applog.FieldOwnerID, ownerID)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	ownerID := sanitizeInput(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}

	if err := s.store.DeleteCategory(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete category", applog.FieldError, err, applog.FieldOwnerID, ownerID, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	// Deleting a category can orphan expenses out of future reports.
	s.reportCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
