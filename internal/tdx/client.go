package tdx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/imroc/req/v3"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://tdx.transportdata.tw/api"
	defaultTokenURL = "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"

	timetableTodayPath = "/v3/Rail/TRA/DailyTrainTimetable/Today"
	timetableDatePath  = "/v3/Rail/TRA/DailyTrainTimetable/TrainDate/"
	liveDelayPath      = "/v3/Rail/TRA/LiveTrainDelay"
	stationPath        = "/v3/Rail/TRA/Station"

	// token refresh happens a minute before the advertised expiry
	tokenExpirySlack = time.Minute
)

// Config holds connection settings for the TDX API.
// ClientID/ClientSecret select the authenticated tier; left empty, requests
// go out anonymously on the basic tier.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client talks to the TDX TRA v3 API. All calls pass through a shared rate
// limiter and a circuit breaker so a misbehaving upstream trips fast instead
// of burning quota.
type Client struct {
	cfg     Config
	http    *req.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg Config, limiter *rate.Limiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 5)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tdx",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
	})

	return &Client{
		cfg:     cfg,
		http:    req.C().SetTimeout(cfg.Timeout).SetBaseURL(cfg.BaseURL),
		limiter: limiter,
		cb:      cb,
	}
}

// DailyTimetable fetches the full-day timetable. The Today feed is a faster
// variant of the dated feed; both return the same logical shape.
func (c *Client) DailyTimetable(ctx context.Context, date string, today bool) ([]TrainTimetable, error) {
	path := timetableTodayPath
	if !today {
		path = timetableDatePath + date
	}
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("tdx: fetch timetable: %w", err)
	}
	var env timetableEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("tdx: decode timetable: %w", err)
	}
	return env.TrainTimetables, nil
}

// LiveDelays fetches the live delay feed for all running trains.
func (c *Client) LiveDelays(ctx context.Context) ([]LiveDelay, error) {
	body, err := c.get(ctx, liveDelayPath, nil)
	if err != nil {
		return nil, fmt.Errorf("tdx: fetch live delays: %w", err)
	}
	var env liveDelayEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("tdx: decode live delays: %w", err)
	}
	return env.LiveTrainDelays, nil
}

// Stations fetches the full station list. Depending on API version the body
// is either a bare array or wrapped in a Stations property; both are accepted.
func (c *Client) Stations(ctx context.Context) ([]StationRecord, error) {
	body, err := c.get(ctx, stationPath, map[string]string{
		"$select": "StationID,StationName,StationPosition",
		"$top":    "999",
	})
	if err != nil {
		return nil, fmt.Errorf("tdx: fetch stations: %w", err)
	}
	var list []StationRecord
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var env stationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("tdx: decode stations: %w", err)
	}
	return env.Stations, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.cb.Execute(func() (interface{}, error) {
		r := c.http.R().
			SetContext(ctx).
			SetQueryParam("$format", "JSON")
		for k, v := range params {
			r.SetQueryParam(k, v)
		}
		if token != "" {
			r.SetHeader("Authorization", "Bearer "+token)
		}

		resp, err := r.Get(path)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		if !resp.IsSuccessState() {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(resp.String()))
		}
		return resp.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// token returns a cached access token, refreshing via the OAuth2
// client-credentials flow when expired. Returns "" when no credentials are
// configured.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
		}).
		SetSuccessResult(&tok).
		Post(c.cfg.TokenURL)
	if err != nil {
		return "", fmt.Errorf("tdx: token request failed: %w", err)
	}
	if !resp.IsSuccessState() {
		return "", fmt.Errorf("tdx: token request: unexpected status %d: %s", resp.StatusCode, snippet(resp.String()))
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).Add(-tokenExpirySlack)
	return c.accessToken, nil
}

// snippet truncates an upstream body for error messages
func snippet(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
