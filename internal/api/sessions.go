package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"miles/internal/metrics"
	"miles/internal/models"
	"miles/internal/nav"
	"miles/internal/wizard"
)

type navigateRequest struct {
	Action       string `json:"action"`
	ExperienceID int64  `json:"experience_id,omitempty"`
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("sessions")

	state, err := s.wizard.StartSession(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// handleSessionByID routes /api/v1/sessions/{id}[/...] to the wizard
// operations.
func (s *HTTPServer) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/sessions/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	sessionID, sub, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		s.getSession(w, r, sessionID)
	case sub == "" && r.Method == http.MethodDelete:
		s.deleteSession(w, r, sessionID)
	case sub == "navigate" && r.Method == http.MethodPost:
		s.navigateSession(w, r, sessionID)
	case sub == "draft" && r.Method == http.MethodPatch:
		s.patchDraft(w, r, sessionID)
	case sub == "draft/advance" && r.Method == http.MethodPost:
		s.advanceDraft(w, r, sessionID)
	case sub == "draft/back" && r.Method == http.MethodPost:
		s.backDraft(w, r, sessionID)
	case sub == "submit" && r.Method == http.MethodPost:
		s.submitSession(w, r, sessionID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) getSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	state, err := s.wizard.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) deleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.wizard.ClearSession(r.Context(), sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear session")
		writeError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) navigateSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}
	metrics.IncHTTP("sessions_navigate")

	state, err := s.wizard.Navigate(r.Context(), sessionID, req.Action, req.ExperienceID)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) patchDraft(w http.ResponseWriter, r *http.Request, sessionID string) {
	var patch models.BookingDraft
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	state, err := s.wizard.UpdateDraft(r.Context(), sessionID, patch)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) advanceDraft(w http.ResponseWriter, r *http.Request, sessionID string) {
	state, err := s.wizard.Advance(r.Context(), sessionID)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) backDraft(w http.ResponseWriter, r *http.Request, sessionID string) {
	state, err := s.wizard.Back(r.Context(), sessionID)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) submitSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	bc := s.cfg.Booking
	key := fmt.Sprintf("submit:%s", sessionID)
	allowed, err := s.wizard.CheckRateLimit(r.Context(), key, bc.RateLimitRequests, time.Duration(bc.RateLimitWindow)*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
	} else if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many submissions, try again later")
		return
	}

	state, err := s.wizard.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	if err := s.wizard.SubmitReady(state); err != nil {
		s.writeWizardError(w, err)
		return
	}
	metrics.IncHTTP("sessions_submit")

	result, err := s.bookings.Submit(r.Context(), state, s.currentUserID(r), bearerToken(r))
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("booking submission failed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The wizard returns to the confirmation view; the draft is spent.
	if _, err := s.wizard.Navigate(r.Context(), sessionID, nav.ActionGoHome, 0); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("post-submit navigation failed")
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound),
		errors.Is(err, wizard.ErrExperienceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, wizard.ErrNotOnBookingPage),
		errors.Is(err, wizard.ErrStepIncomplete),
		errors.Is(err, nav.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("session operation failed")
		writeError(w, http.StatusInternalServerError, "session operation failed")
	}
}
