package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"miles/internal/domain"
	"miles/internal/events"
	"miles/internal/metrics"
	"miles/internal/models"
	"miles/internal/pricing"

	"github.com/rs/zerolog"
)

// SubmissionResult is what the user sees after submitting the wizard.
// Status is always confirmed: notification and persistence are best
// effort and never fail the booking.
type SubmissionResult struct {
	BookingID  string `json:"booking_id"`
	Status     string `json:"status"`
	TotalPrice int    `json:"total_price"`
	Currency   string `json:"currency"`
	EmailSent  bool   `json:"email_sent"`
	Message    string `json:"message"`
}

type BookingService struct {
	catalog  domain.Catalog
	notifier domain.Notifier
	store    domain.BookingStore
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	now func() time.Time
}

func NewBookingService(
	catalog domain.Catalog,
	notifier domain.Notifier,
	store domain.BookingStore,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		catalog:  catalog,
		notifier: notifier,
		store:    store,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildPayload derives the immutable submission snapshot from a completed
// draft. The booking identifier is timestamp-based and minted fresh on
// every call: re-submitting the same draft produces a new identifier, a
// new email and a new row. Nothing deduplicates that.
func (s *BookingService) BuildPayload(draft models.BookingDraft, exp models.Experience) (models.BookingPayload, error) {
	unit, currency, err := pricing.Parse(exp.Price)
	if err != nil {
		return models.BookingPayload{}, fmt.Errorf("parse price %q: %w", exp.Price, err)
	}

	now := s.now()
	return models.BookingPayload{
		CustomerName:       strings.TrimSpace(draft.FirstName + " " + draft.LastName),
		CustomerEmail:      draft.Email,
		ExperienceTitle:    exp.Title,
		ExperienceLocation: exp.Location,
		BookingDate:        draft.Date,
		NumberOfGuests:     draft.Guests,
		TotalPrice:         pricing.Total(unit, draft.Guests),
		Currency:           currency,
		SpecialRequests:    draft.SpecialRequests,
		BookingID:          models.BookingIDPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		BookingTime:        now.UTC().Format(time.RFC3339),
	}, nil
}

// Submit runs the submission flow: notification and persistence are
// issued concurrently, their completion order is unordered, and they are
// joined only to report telemetry. The booking is confirmed regardless.
func (s *BookingService) Submit(ctx context.Context, state *models.SessionState, userID *string, userToken string) (*SubmissionResult, error) {
	exp, ok := s.catalog.GetExperience(state.ExperienceID)
	if !ok {
		return nil, fmt.Errorf("experience %d not found", state.ExperienceID)
	}

	payload, err := s.BuildPayload(state.Draft, *exp)
	if err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		emailSent  bool
		notifyErr  error
		persistErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		emailSent, notifyErr = s.notifier.NotifyBooking(ctx, payload)
	}()
	go func() {
		defer wg.Done()
		persistErr = s.store.InsertBooking(ctx, payload.Record(userID), userToken)
	}()
	wg.Wait()

	if notifyErr != nil {
		s.logger.Error().Err(notifyErr).Str("booking_id", payload.BookingID).Msg("booking notification failed")
		emailSent = false
	}
	if persistErr != nil {
		// The row is lost but the user still gets a confirmed booking.
		s.logger.Error().Err(persistErr).Str("booking_id", payload.BookingID).Msg("booking persist failed")
		metrics.IncPersistFailure()
	}

	metrics.IncBookingSubmitted()
	s.publishEvents(payload, userID, emailSent)

	result := &SubmissionResult{
		BookingID:  payload.BookingID,
		Status:     models.StatusConfirmed,
		TotalPrice: payload.TotalPrice,
		Currency:   payload.Currency,
		EmailSent:  emailSent,
	}
	if emailSent {
		result.Message = "Booking confirmed! You will receive a confirmation email shortly."
	} else {
		result.Message = "Booking confirmed! However, there was an issue sending the confirmation email. Please contact support if you need assistance."
	}
	return result, nil
}

func (s *BookingService) publishEvents(payload models.BookingPayload, userID *string, emailSent bool) {
	snapshot := events.BookingEventPayload{
		BookingID:       payload.BookingID,
		ExperienceTitle: payload.ExperienceTitle,
		BookingDate:     payload.BookingDate,
		NumberOfGuests:  payload.NumberOfGuests,
		TotalPrice:      payload.TotalPrice,
		Status:          models.StatusConfirmed,
		EmailSent:       emailSent,
	}
	if userID != nil {
		snapshot.UserID = *userID
	}

	if err := s.eventBus.PublishJSON(events.EventBookingCreated, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("publish booking_created")
	}
	eventType := events.EventEmailSent
	if !emailSent {
		eventType = events.EventEmailFailed
	}
	if err := s.eventBus.PublishJSON(eventType, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("publish email event")
	}
}
