package domain

import (
	"context"
	"time"

	"miles/internal/models"
)

// StateRepository stores per-session wizard state.
type StateRepository interface {
	GetState(ctx context.Context, sessionID string) (*models.SessionState, error)
	SetState(ctx context.Context, state *models.SessionState) error
	ClearState(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BookingStore persists and reads back booking rows in the hosted
// database. There is no update or cancel path. userToken is the caller's
// access token; empty means the anonymous key, which row-level security
// may restrict to rows without an owner.
type BookingStore interface {
	InsertBooking(ctx context.Context, record models.BookingRecord, userToken string) error
	ListBookings(ctx context.Context, userID, userToken string) ([]models.BookingRecord, error)
}

// Notifier delivers a booking payload to the notification endpoint and
// reports whether the endpoint claimed success.
type Notifier interface {
	NotifyBooking(ctx context.Context, payload models.BookingPayload) (bool, error)
}

// EventPublisher fans out domain events in-process.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Catalog resolves experiences from the static list.
type Catalog interface {
	GetExperience(id int64) (*models.Experience, bool)
	Experiences() []models.Experience
}
