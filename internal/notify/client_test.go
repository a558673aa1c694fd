package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"miles/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyBookingSuccess(t *testing.T) {
	var got models.BookingPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"delivered":true}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	ok, err := client.NotifyBooking(context.Background(), models.BookingPayload{
		ExperienceTitle: "Tea Ceremony",
		NumberOfGuests:  2,
		TotalPrice:      120,
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, got.NumberOfGuests)
	assert.Equal(t, 120, got.TotalPrice)
}

func TestNotifyBookingReportedFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"Resend error"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	ok, err := client.NotifyBooking(context.Background(), models.BookingPayload{})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotifyBookingNonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	_, err := client.NotifyBooking(context.Background(), models.BookingPayload{})
	assert.Error(t, err)
}

func TestNotifyBookingTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/api")
	_, err := client.NotifyBooking(context.Background(), models.BookingPayload{})
	assert.Error(t, err)
}
