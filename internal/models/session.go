package models

// SessionState is one visitor's navigation and wizard state. It is
// persisted in the state repository between requests and discarded on
// TTL expiry.
type SessionState struct {
	ID           string       `json:"id"`
	Page         string       `json:"page"`
	ExperienceID int64        `json:"experience_id,omitempty"`
	Step         string       `json:"step,omitempty"`
	Draft        BookingDraft `json:"draft"`
}

// OnBookingPage reports whether draft mutations are currently allowed.
func (s *SessionState) OnBookingPage() bool {
	return s != nil && s.Page == PageBooking
}
