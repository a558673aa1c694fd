package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"miles/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aki@example.com", body["email"])

		w.Write([]byte(`{"access_token":"tok-1","user":{"id":"u-1","email":"aki@example.com"}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	session, err := client.SignIn(context.Background(), "aki@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.AccessToken)
	require.NotNil(t, session.User)
	assert.Equal(t, "u-1", session.User.ID)
}

func TestSignInBadCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	_, err := client.SignIn(context.Background(), "aki@example.com", "wrong")

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Invalid login credentials", authErr.Message)
}

func TestSignUpUnconfirmedUser(t *testing.T) {
	// Without auto-confirm GoTrue returns a bare user and no token.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		w.Write([]byte(`{"id":"u-2","email":"new@example.com"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	session, err := client.SignUp(context.Background(), "new@example.com", "secret", "New User")

	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	require.NotNil(t, session.User)
	assert.Equal(t, "u-2", session.User.ID)
}

func TestGetUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"u-1","email":"aki@example.com"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	user, err := client.GetUser(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}

func TestSignOut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	assert.NoError(t, client.SignOut(context.Background(), "tok-1"))
}

func TestInsertBooking(t *testing.T) {
	var got models.BookingRecord
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/bookings", r.URL.Path)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	userID := "u-1"
	client := NewClient(ts.URL, "anon-key")
	err := client.InsertBooking(context.Background(), models.BookingRecord{
		BookingID:       "MILES-1714500000000",
		UserID:          &userID,
		ExperienceTitle: "Tea Ceremony & Philosophy",
		NumberOfGuests:  2,
		TotalPrice:      120,
		Status:          models.StatusConfirmed,
	}, "user-jwt")

	require.NoError(t, err)
	assert.Equal(t, "MILES-1714500000000", got.BookingID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "u-1", *got.UserID)
	assert.Equal(t, "confirmed", got.Status)
}

func TestInsertBookingRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	err := client.InsertBooking(context.Background(), models.BookingRecord{BookingID: "MILES-1"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestListBookings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.u-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"booking_id":"MILES-2","status":"confirmed"},{"booking_id":"MILES-1","status":"confirmed"}]`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")
	records, err := client.ListBookings(context.Background(), "u-1", "user-jwt")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "MILES-2", records[0].BookingID)
}
