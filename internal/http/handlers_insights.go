package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	applog "spendsight/internal/log"
	"time"

	"spendsight/internal/insights"
)

// insightsRequest carries the three request parameters, whether they arrive
// as a JSON body (POST) or query parameters (GET).
type insightsRequest struct {
	OwnerID   string `json:"ownerId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req = insightsRequest{
			OwnerID:   q.Get("ownerId"),
			StartDate: q.Get("startDate"),
			EndDate:   q.Get("endDate"),
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	req.OwnerID = sanitizeInput(req.OwnerID)
	req.StartDate = sanitizeInput(req.StartDate)
	req.EndDate = sanitizeInput(req.EndDate)

	cacheKey := req.OwnerID + "|" + req.StartDate + "|" + req.EndDate
	if report, ok := s.reportCache.Get(cacheKey); ok {
		slog.DebugContext(r.Context(), "Insights report served from cache",
			applog.FieldOwnerID, req.OwnerID,
			"start", req.StartDate,
			"end", req.EndDate)
		writeJSON(w, http.StatusOK, report)
		return
	}

	started := time.Now()
	report, err := s.aggregator.Compute(r.Context(), req.OwnerID, req.StartDate, req.EndDate)
	if err != nil {
		switch {
		case insights.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case insights.IsFetch(err):
			slog.ErrorContext(r.Context(), "Insights fetch failed",
				applog.FieldError, err,
				applog.FieldOwnerID, req.OwnerID,
				"start", req.StartDate,
				"end", req.EndDate)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "failed to compute expense insights",
				"details": err.Error(),
			})
		default:
			slog.ErrorContext(r.Context(), "Insights computation failed", applog.FieldError, err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.reportCache.Set(cacheKey, report)

	slog.InfoContext(r.Context(), "Insights report computed",
		applog.FieldOwnerID, req.OwnerID,
		"start", req.StartDate,
		"end", req.EndDate,
		"transactions", report.TransactionCount,
		applog.FieldDuration, time.Since(started).Milliseconds())

	writeJSON(w, http.StatusOK, report)
}
