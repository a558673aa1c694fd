// Package mailer composes the operator and customer emails for a booking
// and knows the sandbox-domain restrictions of the provider.
package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"miles/internal/models"
	"miles/internal/resend"
)

// IsSandboxFrom reports whether the from address belongs to an unverified
// sandbox domain. Sandbox senders can only deliver to the account owner,
// so customer-facing sends are expected to fail there.
func IsSandboxFrom(from string, sandboxDomains []string) bool {
	addr := from
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		addr = strings.TrimRight(addr[i+1:], ">")
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(addr[at+1:]))
	for _, d := range sandboxDomains {
		if domain == strings.ToLower(strings.TrimSpace(d)) {
			return true
		}
	}
	return false
}

// formatDate renders "2024-05-01" as "Wednesday, May 1, 2024". Unparsable
// input passes through untouched.
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func guestsLabel(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// OperatorMessage is the plain-text digest sent to the operator address
// for every booking.
func OperatorMessage(from, to string, p models.BookingPayload) resend.Message {
	subject := fmt.Sprintf("New Booking: %s (%s)", p.ExperienceTitle, p.BookingDate)
	text := strings.Join([]string{
		"A new booking has been placed.",
		"",
		"Booking ID: " + p.BookingID,
		"Time: " + p.BookingTime,
		"Name: " + orDash(p.CustomerName),
		"Email: " + orDash(p.CustomerEmail),
		"Experience: " + p.ExperienceTitle,
		"Location: " + orDash(p.ExperienceLocation),
		"Date: " + p.BookingDate,
		fmt.Sprintf("Guests: %d", p.NumberOfGuests),
		fmt.Sprintf("Total: %d", p.TotalPrice),
		"Requests: " + orDash(p.SpecialRequests),
	}, "\n")

	return resend.Message{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}
}

// CustomerMessage is the HTML confirmation sent to the customer.
func CustomerMessage(from string, p models.BookingPayload) resend.Message {
	subject := fmt.Sprintf("Booking Confirmed - %s", p.ExperienceTitle)
	date := formatDate(p.BookingDate)

	var htmlBody strings.Builder
	htmlBody.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	htmlBody.WriteString(`<h1>Booking Confirmed!</h1>`)
	fmt.Fprintf(&htmlBody, `<p>Hi %s,</p>`, html.EscapeString(p.CustomerName))
	htmlBody.WriteString(`<p>Thank you for booking with Miles! Here are your booking details:</p>`)
	fmt.Fprintf(&htmlBody, `<h2>%s</h2>`, html.EscapeString(p.ExperienceTitle))
	fmt.Fprintf(&htmlBody, `<p><b>Booking ID:</b> %s</p>`, html.EscapeString(p.BookingID))
	fmt.Fprintf(&htmlBody, `<p><b>Location:</b> %s</p>`, html.EscapeString(p.ExperienceLocation))
	fmt.Fprintf(&htmlBody, `<p><b>Date:</b> %s</p>`, html.EscapeString(date))
	fmt.Fprintf(&htmlBody, `<p><b>Guests:</b> %s</p>`, guestsLabel(p.NumberOfGuests))
	fmt.Fprintf(&htmlBody, `<p><b>Total:</b> $%d</p>`, p.TotalPrice)
	if strings.TrimSpace(p.SpecialRequests) != "" {
		fmt.Fprintf(&htmlBody, `<p><b>Special Requests:</b> %s</p>`, html.EscapeString(p.SpecialRequests))
	}
	htmlBody.WriteString(`<p>Your local host will contact you 24-48 hours before the experience.</p>`)
	htmlBody.WriteString(`<p>Safe travels and see you soon!<br>Miles Travel Team</p>`)
	htmlBody.WriteString(`</div>`)

	text := strings.Join([]string{
		"Booking Confirmed - " + p.ExperienceTitle,
		"",
		"Hi " + p.CustomerName + ",",
		"",
		"Thank you for booking with Miles! Here are your booking details:",
		"",
		"Booking ID: " + p.BookingID,
		"Experience: " + p.ExperienceTitle,
		"Location: " + p.ExperienceLocation,
		"Date: " + date,
		"Guests: " + guestsLabel(p.NumberOfGuests),
		fmt.Sprintf("Total: $%d", p.TotalPrice),
		"",
		"Safe travels and see you soon!",
		"Miles Travel Team",
	}, "\n")

	return resend.Message{
		From:    from,
		To:      []string{p.CustomerEmail},
		Subject: subject,
		HTML:    htmlBody.String(),
		Text:    text,
	}
}

// ContactMessage forwards a contact-form submission to the operator
// address with reply_to set to the sender.
func ContactMessage(from, to, name, email, subject, message string) resend.Message {
	if strings.TrimSpace(subject) == "" {
		subject = "Contact Form"
	}

	htmlBody := fmt.Sprintf(
		`<h3>New Contact Message</h3><p><b>Name:</b> %s</p><p><b>Email:</b> %s</p><p><b>Subject:</b> %s</p><p><b>Message:</b><br/>%s</p>`,
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(subject),
		strings.ReplaceAll(html.EscapeString(message), "\n", "<br/>"),
	)

	return resend.Message{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
		ReplyTo: email,
	}
}
