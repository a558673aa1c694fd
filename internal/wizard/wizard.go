// Package wizard drives the 3-step booking flow: date & guests, personal
// details, payment. Session state lives in the state repository and is
// discarded on TTL expiry or navigation away from the booking page.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"miles/internal/domain"
	"miles/internal/models"
	"miles/internal/nav"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrExperienceNotFound = errors.New("experience not found")
	ErrNotOnBookingPage   = errors.New("no booking in progress")
	ErrStepIncomplete     = errors.New("step is incomplete")
	ErrUnknownStep        = errors.New("unknown wizard step")
)

var stepOrder = []string{
	models.StepDateGuests,
	models.StepPersonalDetails,
	models.StepPayment,
}

// Manager owns session lifecycle and step transitions.
type Manager struct {
	states    domain.StateRepository
	catalog   domain.Catalog
	maxGuests int
}

func NewManager(states domain.StateRepository, catalog domain.Catalog, maxGuests int) *Manager {
	if maxGuests <= 0 {
		maxGuests = models.MaxGuests
	}
	return &Manager{
		states:    states,
		catalog:   catalog,
		maxGuests: maxGuests,
	}
}

// StartSession creates a fresh session on the home page.
func (m *Manager) StartSession(ctx context.Context) (*models.SessionState, error) {
	state := &models.SessionState{
		ID:   uuid.NewString(),
		Page: models.PageHome,
	}
	if err := m.states.SetState(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

// GetSession loads a session or reports ErrSessionNotFound.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*models.SessionState, error) {
	state, err := m.states.GetState(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

// Navigate applies a page transition. Entering the booking page starts a
// fresh draft at the first step; leaving it discards the draft.
func (m *Manager) Navigate(ctx context.Context, sessionID, action string, experienceID int64) (*models.SessionState, error) {
	state, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := nav.Transition(state.Page, action)
	if err != nil {
		return nil, err
	}

	if action == nav.ActionViewDetails {
		if _, ok := m.catalog.GetExperience(experienceID); !ok {
			return nil, fmt.Errorf("%w: %d", ErrExperienceNotFound, experienceID)
		}
		state.ExperienceID = experienceID
	}

	wasBooking := state.Page == models.PageBooking
	state.Page = next

	switch {
	case next == models.PageBooking && !wasBooking:
		state.Step = models.StepDateGuests
		state.Draft = models.BookingDraft{Guests: models.MinGuests}
	case next != models.PageBooking && wasBooking:
		state.Step = ""
		state.Draft = models.BookingDraft{}
	}

	if err := m.states.SetState(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

// UpdateDraft merges non-zero patch fields into the draft. Only valid
// while the session is on the booking page.
func (m *Manager) UpdateDraft(ctx context.Context, sessionID string, patch models.BookingDraft) (*models.SessionState, error) {
	state, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.OnBookingPage() {
		return nil, ErrNotOnBookingPage
	}

	mergeDraft(&state.Draft, patch)

	if err := m.states.SetState(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

// Advance validates the current step and moves to the next one.
func (m *Manager) Advance(ctx context.Context, sessionID string) (*models.SessionState, error) {
	state, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.OnBookingPage() {
		return nil, ErrNotOnBookingPage
	}

	if err := m.validateStep(state.Step, state.Draft); err != nil {
		return nil, err
	}

	idx := stepIndex(state.Step)
	if idx < 0 {
		return nil, ErrUnknownStep
	}
	if idx < len(stepOrder)-1 {
		state.Step = stepOrder[idx+1]
	}

	if err := m.states.SetState(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

// Back moves one step earlier without validation. Draft values entered so
// far are kept.
func (m *Manager) Back(ctx context.Context, sessionID string) (*models.SessionState, error) {
	state, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.OnBookingPage() {
		return nil, ErrNotOnBookingPage
	}

	idx := stepIndex(state.Step)
	if idx < 0 {
		return nil, ErrUnknownStep
	}
	if idx > 0 {
		state.Step = stepOrder[idx-1]
	}

	if err := m.states.SetState(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

// SubmitReady checks that every step is complete. Submission is only
// allowed from the payment step.
func (m *Manager) SubmitReady(state *models.SessionState) error {
	if !state.OnBookingPage() {
		return ErrNotOnBookingPage
	}
	if state.Step != models.StepPayment {
		return fmt.Errorf("%w: submit requires step %s", ErrStepIncomplete, models.StepPayment)
	}
	for _, step := range stepOrder[:2] {
		if err := m.validateStep(step, state.Draft); err != nil {
			return err
		}
	}
	return nil
}

// ClearSession drops a session entirely.
func (m *Manager) ClearSession(ctx context.Context, sessionID string) error {
	return m.states.ClearState(ctx, sessionID)
}

// CheckRateLimit forwards to the state repository's windowed counter.
func (m *Manager) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.states.CheckRateLimit(ctx, key, limit, window)
}

func (m *Manager) validateStep(step string, draft models.BookingDraft) error {
	switch step {
	case models.StepDateGuests:
		if _, err := time.Parse("2006-01-02", draft.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrStepIncomplete)
		}
		if draft.Guests < models.MinGuests || draft.Guests > m.maxGuests {
			return fmt.Errorf("%w: guests must be between %d and %d", ErrStepIncomplete, models.MinGuests, m.maxGuests)
		}
	case models.StepPersonalDetails:
		if strings.TrimSpace(draft.FirstName) == "" || strings.TrimSpace(draft.LastName) == "" {
			return fmt.Errorf("%w: first and last name are required", ErrStepIncomplete)
		}
		if !strings.Contains(draft.Email, "@") {
			return fmt.Errorf("%w: a valid email is required", ErrStepIncomplete)
		}
		if strings.TrimSpace(draft.Phone) == "" {
			return fmt.Errorf("%w: phone is required", ErrStepIncomplete)
		}
	case models.StepPayment:
		// Payment details are collected but never charged or validated
		// beyond presence; card data does not leave the service.
	default:
		return ErrUnknownStep
	}
	return nil
}

func stepIndex(step string) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

func mergeDraft(dst *models.BookingDraft, patch models.BookingDraft) {
	if patch.Date != "" {
		dst.Date = patch.Date
	}
	if patch.Guests != 0 {
		dst.Guests = patch.Guests
	}
	if patch.FirstName != "" {
		dst.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		dst.LastName = patch.LastName
	}
	if patch.Email != "" {
		dst.Email = patch.Email
	}
	if patch.Phone != "" {
		dst.Phone = patch.Phone
	}
	if patch.SpecialRequests != "" {
		dst.SpecialRequests = patch.SpecialRequests
	}
	if patch.CardName != "" {
		dst.CardName = patch.CardName
	}
	if patch.CardNumber != "" {
		dst.CardNumber = patch.CardNumber
	}
}
