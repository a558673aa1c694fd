// Package supabase holds the HTTP clients for the hosted auth and
// database backend. Auth, sessions and persistence stay on the SaaS
// side; this package is request/response glue only.
package supabase

import (
	"net/http"
	"time"
)

// Client carries the project URL, the anonymous key and a shared HTTP
// client for both the auth (GoTrue) and database (PostgREST) surfaces.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) authHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
}
