package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"miles/internal/config"
	"miles/internal/domain"
	"miles/internal/export"
	"miles/internal/metrics"
	"miles/internal/resend"
	"miles/internal/service"
	"miles/internal/supabase"
	"miles/internal/wizard"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EmailSender sends one provider email. Satisfied by *resend.Client.
type EmailSender interface {
	Send(ctx context.Context, msg resend.Message) (string, error)
}

// AuthClient is the hosted auth surface the handlers need. Satisfied by
// *supabase.Client.
type AuthClient interface {
	SignUp(ctx context.Context, email, password, fullName string) (*supabase.Session, error)
	SignIn(ctx context.Context, email, password string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// HTTPServer exposes the public booking API.
type HTTPServer struct {
	cfg      *config.Config
	catalog  domain.Catalog
	wizard   *wizard.Manager
	bookings *service.BookingService
	store    domain.BookingStore
	authc    AuthClient
	emails   EmailSender
	bus      domain.EventPublisher
	exporter *export.Exporter
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg *config.Config,
	cat domain.Catalog,
	wiz *wizard.Manager,
	bookings *service.BookingService,
	store domain.BookingStore,
	authc AuthClient,
	emails EmailSender,
	bus domain.EventPublisher,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		catalog:  cat,
		wizard:   wiz,
		bookings: bookings,
		store:    store,
		authc:    authc,
		emails:   emails,
		bus:      bus,
		exporter: export.NewExporter(),
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg.API)

	mux.HandleFunc("/api/v1/experiences", srv.handleExperiences)
	mux.HandleFunc("/api/v1/experiences/", srv.handleExperienceByID)
	mux.HandleFunc("/api/v1/sessions", srv.handleSessions)
	mux.HandleFunc("/api/v1/sessions/", srv.handleSessionByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookingHistory)
	mux.HandleFunc("/api/v1/bookings/export", srv.handleBookingExport)
	mux.HandleFunc("/api/v1/notifications/booking", srv.handleBookingNotification)
	mux.HandleFunc("/api/v1/notifications/contact", srv.handleContactNotification)
	mux.HandleFunc("/api/v1/auth/signup", srv.handleSignUp)
	mux.HandleFunc("/api/v1/auth/signin", srv.handleSignIn)
	mux.HandleFunc("/api/v1/auth/signout", srv.handleSignOut)
	mux.HandleFunc("/api/v1/auth/user", srv.handleAuthUser)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleExperiences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("experiences")
	writeJSON(w, http.StatusOK, map[string]any{"experiences": s.catalog.Experiences()})
}

func (s *HTTPServer) handleExperienceByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/experiences/"
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "experience id is required")
		return
	}

	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid experience id")
		return
	}

	exp, ok := s.catalog.GetExperience(id)
	if !ok {
		writeError(w, http.StatusNotFound, "experience not found")
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// bearerToken extracts the access token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUserID resolves an optional bearer token to a user id. Missing
// or invalid tokens yield nil: bookings stay anonymous.
func (s *HTTPServer) currentUserID(r *http.Request) *string {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	user, err := s.authc.GetUser(r.Context(), token)
	if err != nil || user == nil || user.ID == "" {
		return nil
	}
	return &user.ID
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
