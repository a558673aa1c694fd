package api

import (
	"fmt"
	"net/http"
	"time"

	"miles/internal/export"
	"miles/internal/metrics"
)

// handleBookingHistory returns the caller's bookings, newest first. A
// valid bearer token is required: there is no anonymous history.
func (s *HTTPServer) handleBookingHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("bookings_history")

	userID := s.currentUserID(r)
	if userID == nil {
		writeError(w, http.StatusUnauthorized, "a valid bearer token is required")
		return
	}

	records, err := s.store.ListBookings(r.Context(), *userID, bearerToken(r))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", *userID).Msg("failed to list bookings")
		writeError(w, http.StatusBadGateway, "failed to load bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": records})
}

// handleBookingExport streams every booking of a user as an XLSX
// workbook. Guarded by an operator API key upstream.
func (s *HTTPServer) handleBookingExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("bookings_export")

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	records, err := s.store.ListBookings(r.Context(), userID, "")
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list bookings for export")
		writeError(w, http.StatusBadGateway, "failed to load bookings")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
	if err := s.exporter.Write(w, records); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream export")
	}
}
