package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"miles/internal/catalog"
	"miles/internal/config"
	"miles/internal/events"
	"miles/internal/models"
	"miles/internal/repository"
	"miles/internal/resend"
	"miles/internal/service"
	"miles/internal/supabase"
	"miles/internal/wizard"
)

type stubSender struct {
	mu      sync.Mutex
	sent    []resend.Message
	failFor func(resend.Message) error
}

func (s *stubSender) Send(ctx context.Context, msg resend.Message) (string, error) {
	if s.failFor != nil {
		if err := s.failFor(msg); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return fmt.Sprintf("em_%d", len(s.sent)), nil
}

func (s *stubSender) messages() []resend.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]resend.Message(nil), s.sent...)
}

type stubAuthClient struct {
	users     map[string]*supabase.User
	signInErr error
	signUpErr error
}

func (a *stubAuthClient) session(email string) *supabase.Session {
	return &supabase.Session{
		AccessToken: "tok-1", TokenType: "bearer", ExpiresIn: 3600,
		User: &supabase.User{ID: "user-1", Email: email},
	}
}

func (a *stubAuthClient) SignUp(ctx context.Context, email, password, fullName string) (*supabase.Session, error) {
	if a.signUpErr != nil {
		return nil, a.signUpErr
	}
	return a.session(email), nil
}

func (a *stubAuthClient) SignIn(ctx context.Context, email, password string) (*supabase.Session, error) {
	if a.signInErr != nil {
		return nil, a.signInErr
	}
	return a.session(email), nil
}

func (a *stubAuthClient) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

func (a *stubAuthClient) GetUser(ctx context.Context, accessToken string) (*supabase.User, error) {
	if u, ok := a.users[accessToken]; ok {
		return u, nil
	}
	return nil, &supabase.AuthError{StatusCode: 401, Message: "invalid token"}
}

type stubStore struct {
	mu        sync.Mutex
	records   []models.BookingRecord
	tokens    []string
	insertErr error
}

func (s *stubStore) InsertBooking(ctx context.Context, record models.BookingRecord, userToken string) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	s.tokens = append(s.tokens, userToken)
	return nil
}

func (s *stubStore) ListBookings(ctx context.Context, userID, userToken string) ([]models.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BookingRecord
	for _, r := range s.records {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubNotifier struct {
	mu      sync.Mutex
	calls   int
	success bool
	err     error
}

func (n *stubNotifier) NotifyBooking(ctx context.Context, payload models.BookingPayload) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.success, n.err
}

type testEnv struct {
	server   *HTTPServer
	sender   *stubSender
	authc    *stubAuthClient
	store    *stubStore
	notifier *stubNotifier
	bus      *events.EventBus
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			HTTP: config.APIHTTPConfig{Port: 0},
			Auth: config.APIAuthConfig{
				APIKeys: []config.APIClientKey{
					{Key: "ops-key", Extra: "ops-extra", Name: "operator", Permissions: []string{"export:bookings"}},
				},
			},
		},
		Resend: config.ResendConfig{
			APIKey:         "re_test",
			From:           "Miles <onboarding@resend.dev>",
			To:             "bookings@example.com",
			SandboxDomains: []string{"resend.dev"},
		},
		Supabase: config.SupabaseConfig{URL: "http://supabase.local", AnonKey: "anon"},
		Booking: config.BookingConfig{
			SessionTTLSeconds: 3600,
			MaxGuests:         6,
			RateLimitRequests: 100,
			RateLimitWindow:   60,
		},
	}
}

func testExperiences() []models.Experience {
	return []models.Experience{
		{ID: 1, Title: "Traditional Cooking with Nonna", Location: "Rome, Italy", Price: "$89"},
		{ID: 2, Title: "Street Food Walking Tour", Location: "Bangkok, Thailand", Price: "$45"},
		{ID: 3, Title: "Tea Ceremony & Philosophy", Location: "Kyoto, Japan", Price: "$75"},
	}
}

func newTestEnv() *testEnv {
	cfg := testConfig()
	logger := zerolog.Nop()

	cat := catalog.New(testExperiences())
	states := repository.NewMemoryStateRepository(time.Hour)
	wiz := wizard.NewManager(states, cat, cfg.Booking.MaxGuests)

	sender := &stubSender{}
	authc := &stubAuthClient{users: map[string]*supabase.User{
		"tok-1": {ID: "user-1", Email: "maya@example.com"},
	}}
	store := &stubStore{}
	notifier := &stubNotifier{success: true}

	bus := events.NewEventBus()
	bookings := service.NewBookingService(cat, notifier, store, bus, &logger)
	srv := NewHTTPServer(cfg, cat, wiz, bookings, store, authc, sender, bus, &logger)

	return &testEnv{server: srv, sender: sender, authc: authc, store: store, notifier: notifier, bus: bus}
}
