package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendsight/internal/core"
	applog "spendsight/internal/log"
	"spendsight/internal/storage"
)

type expenseRequest struct {
	OwnerID       string `json:"ownerId"`
	Amount        string `json:"amount"`
	OccurredAt    string `json:"occurredAt"`
	PaymentMethod string `json:"paymentMethod"`
	CategoryID    string `json:"categoryId"`
	Description   string `json:"description"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

type parsedExpense struct {
	amount     decimal.Decimal
	occurredAt time.Time
}

// decodeExpenseRequest validates the shared create/update payload. It writes
// the error response itself and reports whether the request survived.
func decodeExpenseRequest(w http.ResponseWriter, r *http.Request) (expenseRequest, parsedExpense, bool) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return expenseRequest{}, parsedExpense{}, false
	}

	req.OwnerID = sanitizeInput(req.OwnerID)
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return expenseRequest{}, parsedExpense{}, false
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return expenseRequest{}, parsedExpense{}, false
	}

	occurredAt, err := parseTimestamp(req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid occurredAt: expected RFC 3339 or YYYY-MM-DD")
		return expenseRequest{}, parsedExpense{}, false
	}

	return req, parsedExpense{amount: amount, occurredAt: occurredAt}, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	req, parsed, ok := decodeExpenseRequest(w, r)
	if !ok {
		return
	}

	id, err := s.store.CreateExpense(r.Context(), storage.CreateExpenseParams{
		OwnerID:       req.OwnerID,
		Amount:        parsed.amount,
		OccurredAt:    parsed.occurredAt,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		CategoryID:    sanitizeInput(req.CategoryID),
		Description:   sanitizeInput(req.Description),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense",
			applog.FieldError, err,
			applog.FieldOwnerID, req.OwnerID,
			applog.FieldAmount, parsed.amount.String())
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.reportCache.Purge()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ownerID := sanitizeInput(q.Get("ownerId"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}

	// Without date params the full history comes back.
	var window *core.DateWindow
	startDate, endDate := q.Get("startDate"), q.Get("endDate")
	if startDate != "" || endDate != "" {
		parsed, err := core.NewDateWindow(startDate, endDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		window = &parsed
	}

	expenses, err := s.store.ListExpenses(r.Context(), ownerID, window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses",
			applog.FieldError, err,
			applog.FieldOwnerID, ownerID)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleUpdateExpense(w, r, id)
	case http.MethodDelete:
		s.handleDeleteExpense(w, r, id)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, id string) {
	req, parsed, ok := decodeExpenseRequest(w, r)
	if !ok {
		return
	}

	updated, err := s.store.UpdateExpense(r.Context(), req.OwnerID, id, storage.UpdateExpenseParams{
		Amount:        parsed.amount,
		OccurredAt:    parsed.occurredAt,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		CategoryID:    sanitizeInput(req.CategoryID),
		Description:   sanitizeInput(req.Description),
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update expense",
			applog.FieldError, err,
			applog.FieldOwnerID, req.OwnerID,
			"id", id)
		writeError(w, http.StatusInternalServerError, "failed to update expense")
		return
	}

	s.reportCache.Purge()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	ownerID := sanitizeInput(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense",
			applog.FieldError, err,
			applog.FieldOwnerID, ownerID,
			"id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.reportCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

// parseTimestamp accepts an RFC 3339 timestamp or a bare calendar date.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return core.ParseDate(s)
}
