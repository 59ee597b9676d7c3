package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yonasstephen/shams-sub000/internal/config"
)

const baseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/fba"

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrUnauthorized means the league is private and the SWID/espn_s2
	// cookies are missing or expired.
	ErrUnauthorized = errors.New("espn rejected league credentials")
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Query selects what one league read returns. Views map to repeated "view"
// parameters and Filter is sent as the x-fantasy-filter header.
type Query struct {
	Views         []string
	ScoringPeriod int
	Filter        any
}

func (q Query) values() url.Values {
	v := url.Values{}
	for _, view := range q.Views {
		v.Add("view", view)
	}
	if q.ScoringPeriod > 0 {
		v.Set("scoringPeriodId", strconv.Itoa(q.ScoringPeriod))
	}
	return v
}

// Client reads one fantasy basketball league. Transient upstream failures
// are retried a few times before giving up.
type Client struct {
	httpClient *http.Client
	baseURL    string
	league     config.ESPNAPI
	backoff    time.Duration
}

func NewClient(cfg config.ESPNAPI) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		league:     cfg,
		backoff:    retryBackoff,
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

func (c *Client) leagueURL() string {
	return fmt.Sprintf("%s/seasons/%s/segments/0/leagues/%s", c.baseURL, c.league.Year, c.league.LeagueID)
}

// League runs q against the configured league and decodes the body into result.
func (c *Client) League(ctx context.Context, q Query, result any) error {
	var filter string
	if q.Filter != nil {
		b, err := json.Marshal(q.Filter)
		if err != nil {
			return fmt.Errorf("encoding fantasy filter: %w", err)
		}
		filter = string(b)
	}
	target := c.leagueURL() + "?" + q.values().Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retry, err := c.do(ctx, target, filter, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if retry <= 0 || attempt == maxAttempts {
			break
		}
		slog.Warn("Retrying ESPN league read", "attempt", attempt, "views", q.Views, "error", err)
		select {
		case <-time.After(retry):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// do performs one request. A positive duration means the failure is
// transient and worth retrying after that long.
func (c *Client) do(ctx context.Context, target, filter string, result any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if c.league.SWID != "" || c.league.ESPNS2 != "" {
		req.AddCookie(&http.Cookie{Name: "SWID", Value: c.league.SWID})
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.league.ESPNS2})
	}
	if filter != "" {
		req.Header.Set("x-fantasy-filter", filter)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return c.backoff, fmt.Errorf("requesting league: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, fmt.Errorf("%w: %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		io.Copy(io.Discard, resp.Body)
		return retryAfter(resp, c.backoff), fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return 0, fmt.Errorf("decoding league response: %w", err)
	}
	return 0, nil
}

func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
