package wizard

import (
	"context"
	"testing"
	"time"

	"miles/internal/catalog"
	"miles/internal/models"
	"miles/internal/nav"
	"miles/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cat := catalog.New([]models.Experience{
		{ID: 1, Title: "Tea Ceremony & Philosophy", Location: "Kyoto, Japan", Price: "$75"},
		{ID: 2, Title: "Street Food Walking Tour", Location: "Bangkok, Thailand", Price: "$45"},
	})
	states := repository.NewMemoryStateRepository(time.Hour)
	return NewManager(states, cat, models.MaxGuests)
}

func toBookingPage(t *testing.T, m *Manager, ctx context.Context) *models.SessionState {
	t.Helper()
	state, err := m.StartSession(ctx)
	require.NoError(t, err)

	state, err = m.Navigate(ctx, state.ID, nav.ActionViewDetails, 1)
	require.NoError(t, err)

	state, err = m.Navigate(ctx, state.ID, nav.ActionBookNow, 0)
	require.NoError(t, err)
	return state
}

func TestStartSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	state, err := m.StartSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, models.PageHome, state.Page)

	got, err := m.GetSession(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, got.ID)
}

func TestGetSessionMissing(t *testing.T) {
	m := newTestManager(t)
	_, err := m.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNavigateIntoBookingStartsDraft(t *testing.T) {
	m := newTestManager(t)
	state := toBookingPage(t, m, context.Background())

	assert.Equal(t, models.PageBooking, state.Page)
	assert.Equal(t, int64(1), state.ExperienceID)
	assert.Equal(t, models.StepDateGuests, state.Step)
	assert.Equal(t, models.MinGuests, state.Draft.Guests)
}

func TestNavigateUnknownExperience(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state, err := m.StartSession(ctx)
	require.NoError(t, err)

	_, err = m.Navigate(ctx, state.ID, nav.ActionViewDetails, 99)
	assert.Error(t, err)
}

func TestNavigateAwayDiscardsDraft(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state := toBookingPage(t, m, ctx)

	_, err := m.UpdateDraft(ctx, state.ID, models.BookingDraft{Date: "2024-05-01", Guests: 2})
	require.NoError(t, err)

	state, err = m.Navigate(ctx, state.ID, nav.ActionBack, 0)
	require.NoError(t, err)
	assert.Equal(t, models.PageDetails, state.Page)
	assert.Empty(t, state.Step)
	assert.Empty(t, state.Draft.Date)
}

func TestUpdateDraftRequiresBookingPage(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state, err := m.StartSession(ctx)
	require.NoError(t, err)

	_, err = m.UpdateDraft(ctx, state.ID, models.BookingDraft{Date: "2024-05-01"})
	assert.ErrorIs(t, err, ErrNotOnBookingPage)
}

func TestAdvanceThroughAllSteps(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state := toBookingPage(t, m, ctx)

	// Step 1 incomplete: no date yet.
	_, err := m.Advance(ctx, state.ID)
	assert.ErrorIs(t, err, ErrStepIncomplete)

	_, err = m.UpdateDraft(ctx, state.ID, models.BookingDraft{Date: "2024-05-01", Guests: 2})
	require.NoError(t, err)

	state, err = m.Advance(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepPersonalDetails, state.Step)

	// Step 2 incomplete: no contact details.
	_, err = m.Advance(ctx, state.ID)
	assert.ErrorIs(t, err, ErrStepIncomplete)

	_, err = m.UpdateDraft(ctx, state.ID, models.BookingDraft{
		FirstName: "Aki",
		LastName:  "Tanaka",
		Email:     "aki@example.com",
		Phone:     "+81-90-0000-0000",
	})
	require.NoError(t, err)

	state, err = m.Advance(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, state.Step)

	assert.NoError(t, m.SubmitReady(state))
}

func TestAdvanceRejectsGuestsOutOfRange(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state := toBookingPage(t, m, ctx)

	_, err := m.UpdateDraft(ctx, state.ID, models.BookingDraft{Date: "2024-05-01", Guests: 7})
	require.NoError(t, err)

	_, err = m.Advance(ctx, state.ID)
	assert.ErrorIs(t, err, ErrStepIncomplete)
}

func TestBack(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state := toBookingPage(t, m, ctx)

	_, err := m.UpdateDraft(ctx, state.ID, models.BookingDraft{Date: "2024-05-01", Guests: 2})
	require.NoError(t, err)
	state, err = m.Advance(ctx, state.ID)
	require.NoError(t, err)

	state, err = m.Back(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepDateGuests, state.Step)
	// Entered values survive going back.
	assert.Equal(t, "2024-05-01", state.Draft.Date)

	// Back at the first step stays put.
	state, err = m.Back(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepDateGuests, state.Step)
}

func TestSubmitReadyRequiresPaymentStep(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state := toBookingPage(t, m, ctx)

	err := m.SubmitReady(state)
	assert.ErrorIs(t, err, ErrStepIncomplete)
}

func TestClearSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	state, err := m.StartSession(ctx)
	require.NoError(t, err)

	require.NoError(t, m.ClearSession(ctx, state.ID))
	_, err = m.GetSession(ctx, state.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
