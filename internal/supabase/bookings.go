package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"miles/internal/models"
)

const bookingsTable = "bookings"

// InsertBooking writes one booking row. Best effort: callers must not
// fail a booking on an insert error. The caller's token is forwarded so
// row-level security sees the owning user; anonymous bookings go out
// under the anon key.
func (c *Client) InsertBooking(ctx context.Context, record models.BookingRecord, userToken string) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/v1/"+bookingsTable, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authHeaders(req, userToken)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("insert booking: status %d: %s", resp.StatusCode, string(raw))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ListBookings returns the booking history for a user, newest first,
// read under the user's own token. There is no update or cancel path.
func (c *Client) ListBookings(ctx context.Context, userID, userToken string) ([]models.BookingRecord, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("order", "created_at.desc")
	return c.selectBookings(ctx, query, userToken)
}

// ListAllBookings returns every booking row, newest first. Reporting
// only; the public API never exposes unfiltered rows.
func (c *Client) ListAllBookings(ctx context.Context) ([]models.BookingRecord, error) {
	query := url.Values{}
	query.Set("order", "created_at.desc")
	return c.selectBookings(ctx, query, "")
}

func (c *Client) selectBookings(ctx context.Context, query url.Values, bearer string) ([]models.BookingRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/rest/v1/"+bookingsTable+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authHeaders(req, bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list bookings: status %d: %s", resp.StatusCode, string(raw))
	}

	var records []models.BookingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse bookings: %w", err)
	}
	return records, nil
}
