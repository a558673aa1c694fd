package models

const (
	StatusConfirmed = "confirmed"
)

// BookingIDPrefix tags client-visible booking identifiers. IDs are
// timestamp-based and not guaranteed unique across rapid retries.
const BookingIDPrefix = "MILES-"

// Wizard steps, in order.
const (
	StepDateGuests      = "date_guests"
	StepPersonalDetails = "personal_details"
	StepPayment         = "payment"
)

// Pages of the client flow.
const (
	PageHome    = "home"
	PageDetails = "details"
	PageBooking = "booking"
	PageAuth    = "auth"
	PageAccount = "account"
)

const (
	// DefaultSessionTTL is how long an abandoned wizard session is kept.
	DefaultSessionTTL = 24 * 60 * 60 // seconds

	// Guest count bounds offered by the wizard UI. The price math never
	// special-cases values outside this range.
	MinGuests = 1
	MaxGuests = 6
)
