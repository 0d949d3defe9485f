// Package client is the consumer-side library for the OnTrack API. It wraps
// every call behind a de-duplicating, retrying fetch layer: concurrent
// identical requests collapse into one round-trip, and rate-limited responses
// are retried with exponential backoff.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// maxRetries bounds 429 retries; backoff waits are 1s, 2s, 4s.
const maxRetries = 3

// Station mirrors the /stations response shape.
type Station struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	NameEn string   `json:"nameEn"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
}

// Train status values as served by the API.
const (
	StatusOnTime    = "on-time"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
	StatusUnknown   = "unknown"
)

// TrainInfo mirrors one train of the /schedule response.
type TrainInfo struct {
	TrainNo            string `json:"trainNo"`
	TrainType          string `json:"trainType"`
	Direction          int    `json:"direction"`
	OriginStation      string `json:"originStation"`
	DestinationStation string `json:"destinationStation"`
	DepartureTime      string `json:"departureTime"`
	ArrivalTime        string `json:"arrivalTime"`
	Delay              int    `json:"delay"`
	Status             string `json:"status"`
}

// Terminal mirrors the echoed origin/destination of a schedule query.
type Terminal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduleResponse mirrors the /schedule response shape.
type ScheduleResponse struct {
	Date        string      `json:"date"`
	Origin      Terminal    `json:"origin"`
	Destination Terminal    `json:"destination"`
	Trains      []TrainInfo `json:"trains"`
}

// StatusError is a non-success HTTP response, with the body text preserved so
// callers see what the server actually said.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.Code, e.Body)
}

// Client issues keyed GET requests against the OnTrack API. The in-flight
// registry is keyed by (url, attempt): concurrent duplicates share one call,
// while a retry after backoff uses a fresh key so it is never collapsed into
// the failed attempt.
type Client struct {
	baseURL string
	httpc   *http.Client
	group   singleflight.Group
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithSleep overrides the backoff timer, letting tests observe delays without
// waiting for them.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stations fetches the full station directory.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	var out []Station
	if err := c.getJSON(ctx, c.baseURL+"/stations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Schedule fetches the candidate trains between two stations. date is
// optional; empty means today on the server side.
func (c *Client) Schedule(ctx context.Context, origin, dest, date string) (*ScheduleResponse, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("dest", dest)
	if date != "" {
		params.Set("date", date)
	}
	var out ScheduleResponse
	if err := c.getJSON(ctx, c.baseURL+"/schedule?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON fetches u and decodes the payload into out. The singleflight group
// holds the registry entry only while the call is outstanding; it is dropped
// when the call settles, success or failure.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	for attempt := 0; ; attempt++ {
		key := fmt.Sprintf("%s#%d", u, attempt)
		v, err, _ := c.group.Do(key, func() (any, error) {
			return c.fetchOnce(ctx, u)
		})
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.Code == http.StatusTooManyRequests && attempt < maxRetries {
				if serr := c.sleep(ctx, time.Duration(1<<attempt)*time.Second); serr != nil {
					return serr
				}
				continue
			}
			return err
		}
		return json.Unmarshal(v.([]byte), out)
	}
}

func (c *Client) fetchOnce(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
