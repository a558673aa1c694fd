package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"miles/internal/events"
	"miles/internal/mailer"
	"miles/internal/metrics"
	"miles/internal/models"
	"miles/internal/resend"
)

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// handleBookingNotification validates the payload and forwards it to the
// email provider: always to the operator address, and to the customer
// when an address is present. An operator-send failure is fatal (502); a
// customer-send failure from a sandbox sender is tolerated.
func (s *HTTPServer) handleBookingNotification(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeEnvelope(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false, "error": "Method not allowed",
		})
		return
	}
	metrics.IncHTTP("notifications_booking")

	var payload models.BookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "Invalid JSON body",
		})
		return
	}

	if payload.ExperienceTitle == "" || payload.BookingDate == "" || payload.NumberOfGuests == 0 {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "Missing required fields",
		})
		return
	}

	rc := s.cfg.Resend
	if rc.APIKey == "" || rc.From == "" || rc.To == "" {
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{
			"success": false, "error": "Server email config missing",
		})
		return
	}

	opMsg := mailer.OperatorMessage(rc.From, rc.To, payload)
	opID, err := s.emails.Send(r.Context(), opMsg)
	if err != nil {
		metrics.IncEmail("operator", "failed")
		var apiErr *resend.APIError
		if errors.As(err, &apiErr) {
			s.logger.Error().Int("status", apiErr.StatusCode).Str("detail", apiErr.Body).Msg("operator email rejected")
			writeEnvelope(w, http.StatusBadGateway, map[string]any{
				"success": false, "error": "Resend error", "detail": apiErr.Body,
			})
			return
		}
		s.logger.Error().Err(err).Msg("operator email failed")
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{
			"success": false, "error": err.Error(),
		})
		return
	}
	metrics.IncEmail("operator", "sent")

	delivered := s.sendCustomerEmail(r, payload)

	writeEnvelope(w, http.StatusOK, map[string]any{
		"success": true, "delivered": delivered, "id": opID,
	})
}

// sendCustomerEmail is best effort. Sandbox senders cannot deliver to
// arbitrary recipients, so a provider rejection there is expected and
// swallowed; outside the sandbox it is logged but still non-fatal to the
// request, which already carries a successful operator send.
func (s *HTTPServer) sendCustomerEmail(r *http.Request, payload models.BookingPayload) bool {
	if payload.CustomerEmail == "" {
		metrics.IncEmail("customer", "skipped")
		return false
	}

	rc := s.cfg.Resend
	msg := mailer.CustomerMessage(rc.From, payload)
	if _, err := s.emails.Send(r.Context(), msg); err != nil {
		metrics.IncEmail("customer", "failed")
		if mailer.IsSandboxFrom(rc.From, rc.SandboxDomains) {
			s.logger.Warn().Err(err).Msg("customer email skipped: sandbox sender")
		} else {
			s.logger.Error().Err(err).Msg("customer email failed")
		}
		return false
	}
	metrics.IncEmail("customer", "sent")
	return true
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// handleContactNotification forwards the contact form to the operator
// address. GET answers a liveness ping.
func (s *HTTPServer) handleContactNotification(w http.ResponseWriter, r *http.Request) {
	cors(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "route": "/api/v1/notifications/contact"})
		return
	case http.MethodPost:
	default:
		writeEnvelope(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false, "error": "Method not allowed",
		})
		return
	}
	metrics.IncHTTP("notifications_contact")

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "Invalid JSON body",
		})
		return
	}

	rc := s.cfg.Resend
	if rc.APIKey == "" || rc.From == "" || rc.To == "" {
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{
			"success": false, "error": "Missing env: RESEND_API_KEY / RESEND_FROM / RESEND_TO",
		})
		return
	}

	msg := mailer.ContactMessage(rc.From, rc.To, req.Name, req.Email, req.Subject, req.Message)
	id, err := s.emails.Send(r.Context(), msg)
	if err != nil {
		var apiErr *resend.APIError
		if errors.As(err, &apiErr) {
			writeEnvelope(w, http.StatusBadGateway, map[string]any{
				"success": false, "error": "Resend error", "detail": apiErr.Body,
			})
			return
		}
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{
			"success": false, "error": err.Error(),
		})
		return
	}

	if s.bus != nil {
		if err := s.bus.PublishJSON(events.EventContactReceived, events.ContactEventPayload{
			Name: req.Name, Email: req.Email, Subject: msg.Subject,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("publish contact_received")
		}
	}

	writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// writeEnvelope is writeJSON for {success,...} bodies; kept separate so
// notification responses read uniformly.
func writeEnvelope(w http.ResponseWriter, statusCode int, payload map[string]any) {
	writeJSON(w, statusCode, payload)
}
