package mailer

import (
	"strings"
	"testing"

	"miles/internal/models"

	"github.com/stretchr/testify/assert"
)

func samplePayload() models.BookingPayload {
	return models.BookingPayload{
		CustomerName:       "Aki Tanaka",
		CustomerEmail:      "aki@example.com",
		ExperienceTitle:    "Tea Ceremony & Philosophy",
		ExperienceLocation: "Kyoto, Japan",
		BookingDate:        "2024-05-01",
		NumberOfGuests:     2,
		TotalPrice:         120,
		SpecialRequests:    "vegetarian",
		BookingID:          "MILES-1714500000000",
		BookingTime:        "2024-04-20T10:00:00Z",
	}
}

func TestIsSandboxFrom(t *testing.T) {
	sandbox := []string{"resend.dev"}

	assert.True(t, IsSandboxFrom("onboarding@resend.dev", sandbox))
	assert.True(t, IsSandboxFrom("Miles <onboarding@resend.dev>", sandbox))
	assert.True(t, IsSandboxFrom("Miles <onboarding@RESEND.DEV>", sandbox))
	assert.False(t, IsSandboxFrom("Miles Travel <of@thisismerci.com>", sandbox))
	assert.False(t, IsSandboxFrom("not-an-address", sandbox))
}

func TestOperatorMessage(t *testing.T) {
	msg := OperatorMessage("Miles <onboarding@resend.dev>", "ops@example.com", samplePayload())

	assert.Equal(t, []string{"ops@example.com"}, msg.To)
	assert.Equal(t, "New Booking: Tea Ceremony & Philosophy (2024-05-01)", msg.Subject)
	assert.Contains(t, msg.Text, "Booking ID: MILES-1714500000000")
	assert.Contains(t, msg.Text, "Guests: 2")
	assert.Contains(t, msg.Text, "Total: 120")
	assert.Empty(t, msg.HTML)
}

func TestOperatorMessageDashesForEmptyFields(t *testing.T) {
	p := samplePayload()
	p.CustomerName = ""
	p.SpecialRequests = ""

	msg := OperatorMessage("from@x.com", "to@x.com", p)
	assert.Contains(t, msg.Text, "Name: -")
	assert.Contains(t, msg.Text, "Requests: -")
}

func TestCustomerMessage(t *testing.T) {
	msg := CustomerMessage("Miles Travel <of@thisismerci.com>", samplePayload())

	assert.Equal(t, []string{"aki@example.com"}, msg.To)
	assert.Equal(t, "Booking Confirmed - Tea Ceremony & Philosophy", msg.Subject)
	assert.Contains(t, msg.HTML, "Wednesday, May 1, 2024")
	assert.Contains(t, msg.HTML, "2 people")
	assert.Contains(t, msg.HTML, "$120")
	assert.Contains(t, msg.Text, "Guests: 2 people")
}

func TestCustomerMessageSingleGuest(t *testing.T) {
	p := samplePayload()
	p.NumberOfGuests = 1
	p.SpecialRequests = ""

	msg := CustomerMessage("from@x.com", p)
	assert.Contains(t, msg.HTML, "1 person")
	assert.NotContains(t, msg.HTML, "Special Requests")
}

func TestCustomerMessageEscapesHTML(t *testing.T) {
	p := samplePayload()
	p.CustomerName = "<script>alert(1)</script>"

	msg := CustomerMessage("from@x.com", p)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestContactMessage(t *testing.T) {
	msg := ContactMessage("Miles <onboarding@resend.dev>", "ops@example.com",
		"Sam", "sam@example.com", "", "Hello\nthere")

	assert.Equal(t, "Contact Form", msg.Subject)
	assert.Equal(t, "sam@example.com", msg.ReplyTo)
	assert.True(t, strings.Contains(msg.HTML, "Hello<br/>there"))
}
