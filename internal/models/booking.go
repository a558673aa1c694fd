package models

// BookingDraft is the mutable record collected by the booking wizard.
// Payment fields are collected on the last step but never leave the
// service.
type BookingDraft struct {
	Date            string `json:"date"`
	Guests          int    `json:"guests"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"special_requests"`
	CardName        string `json:"card_name,omitempty"`
	CardNumber      string `json:"card_number,omitempty"`
}

// BookingPayload is the immutable snapshot sent to the notification
// endpoint. Field names are part of the external interface.
type BookingPayload struct {
	CustomerName       string `json:"customerName"`
	CustomerEmail      string `json:"customerEmail"`
	ExperienceTitle    string `json:"experienceTitle"`
	ExperienceLocation string `json:"experienceLocation"`
	BookingDate        string `json:"bookingDate"`
	NumberOfGuests     int    `json:"numberOfGuests"`
	TotalPrice         int    `json:"totalPrice"`
	Currency           string `json:"currency,omitempty"`
	SpecialRequests    string `json:"specialRequests"`
	BookingID          string `json:"bookingId"`
	BookingTime        string `json:"bookingTime"`
}

// BookingRecord is the row persisted to the hosted database. UserID is
// nullable: anonymous bookings are allowed.
type BookingRecord struct {
	BookingID          string  `json:"booking_id"`
	UserID             *string `json:"user_id,omitempty"`
	CustomerName       string  `json:"customer_name"`
	CustomerEmail      string  `json:"customer_email"`
	ExperienceTitle    string  `json:"experience_title"`
	ExperienceLocation string  `json:"experience_location"`
	BookingDate        string  `json:"booking_date"`
	NumberOfGuests     int     `json:"number_of_guests"`
	TotalPrice         int     `json:"total_price"`
	Currency           string  `json:"currency,omitempty"`
	SpecialRequests    string  `json:"special_requests"`
	Status             string  `json:"status"`
	CreatedAt          string  `json:"created_at,omitempty"`
}

// Record derives the persisted row from a payload.
func (p BookingPayload) Record(userID *string) BookingRecord {
	return BookingRecord{
		BookingID:          p.BookingID,
		UserID:             userID,
		CustomerName:       p.CustomerName,
		CustomerEmail:      p.CustomerEmail,
		ExperienceTitle:    p.ExperienceTitle,
		ExperienceLocation: p.ExperienceLocation,
		BookingDate:        p.BookingDate,
		NumberOfGuests:     p.NumberOfGuests,
		TotalPrice:         p.TotalPrice,
		Currency:           p.Currency,
		SpecialRequests:    p.SpecialRequests,
		Status:             StatusConfirmed,
	}
}
