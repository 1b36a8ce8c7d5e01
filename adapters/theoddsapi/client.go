package theoddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/pkg/models"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com"
	apiVersion     = "v4"
	userAgent      = "Janus/1.0 (Fortuna Arbitrage Scanner)"
	timeout        = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second

	// commenceTimeLayout is the only timestamp shape the API accepts (no fractional seconds)
	commenceTimeLayout = "2006-01-02T15:04:05Z"
)

var (
	defaultRegions = []string{"us", "us2"}
	defaultMarkets = []string{"h2h"}
)

// Client implements the VendorAdapter interface for The Odds API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	rateLimits models.RateLimits
	mu         sync.RWMutex
}

// Ensure Client implements VendorAdapter
var _ contracts.VendorAdapter = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryDelay sets the base delay of the exponential backoff
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// NewClient creates a new The Odds API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryDelay: retryDelay,
		rateLimits: models.RateLimits{
			RequestsRemaining: 500, // Default quota
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSports retrieves the sport catalog
func (c *Client) FetchSports(ctx context.Context) ([]models.Sport, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/", c.baseURL, apiVersion)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)

	body, err := c.doRequestWithRetry(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch sports failed: %w", err)
	}

	var sports []models.Sport
	if err := json.Unmarshal(body, &sports); err != nil {
		return nil, fmt.Errorf("parse sports response: %w", err)
	}

	return sports, nil
}

// FetchOdds retrieves the decimal odds snapshot of one sport
func (c *Client) FetchOdds(ctx context.Context, opts *models.FetchOddsOptions) ([]models.Event, error) {
	if opts == nil || opts.Sport == "" {
		return nil, errors.New("fetch odds: sport key is required")
	}

	endpoint := fmt.Sprintf("%s/%s/sports/%s/odds/", c.baseURL, apiVersion, url.PathEscape(opts.Sport))

	regions := opts.Regions
	if len(regions) == 0 {
		regions = defaultRegions
	}
	markets := opts.Markets
	if len(markets) == 0 {
		markets = defaultMarkets
	}
	from := opts.CommenceTimeFrom
	if from.IsZero() {
		from = time.Now()
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", strings.Join(regions, ","))
	params.Set("markets", strings.Join(markets, ","))
	params.Set("oddsFormat", "decimal")
	params.Set("dateFormat", "iso")
	params.Set("commenceTimeFrom", FormatCommenceTime(from))

	body, err := c.doRequestWithRetry(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch odds failed: %w", err)
	}

	var apiResp []oddsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse odds response: %w", err)
	}

	return parseOddsResponse(apiResp), nil
}

// GetRateLimits returns current rate limit information
func (c *Client) GetRateLimits() models.RateLimits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimits
}

// FormatCommenceTime renders t in UTC without fractional seconds
func FormatCommenceTime(t time.Time) string {
	return t.UTC().Format(commenceTimeLayout)
}

// ParseCommenceTime accepts RFC 3339 timestamps with or without fractional seconds
func ParseCommenceTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid commence time %q: %w", s, err)
	}
	return t, nil
}

// doRequestWithRetry performs HTTP request with retry logic
func (c *Client) doRequestWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return body, nil
		}

		lastErr = err

		// Don't retry on client errors (4xx except 429)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Update rate limits from headers
	c.updateRateLimits(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

// updateRateLimits extracts rate limit info from response headers
func (c *Client) updateRateLimits(headers http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := headers.Get("x-requests-remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimits.RequestsRemaining = val
		}
	}

	if used := headers.Get("x-requests-used"); used != "" {
		if val, err := strconv.Atoi(used); err == nil {
			c.rateLimits.RequestsUsed = val
		}
	}
}

// parseOddsResponse converts API response to internal events, preserving order
func parseOddsResponse(apiResp []oddsResponse) []models.Event {
	events := make([]models.Event, 0, len(apiResp))

	for _, event := range apiResp {
		// Unparseable timestamps are left zero; the core does not validate them
		commenceTime, _ := ParseCommenceTime(event.CommenceTime)

		bookmakers := make([]models.Bookmaker, 0, len(event.Bookmakers))
		for _, bm := range event.Bookmakers {
			lastUpdate, _ := ParseCommenceTime(bm.LastUpdate)

			markets := make([]models.Market, 0, len(bm.Markets))
			for _, m := range bm.Markets {
				outcomes := make([]models.Outcome, 0, len(m.Outcomes))
				for _, o := range m.Outcomes {
					outcome := models.Outcome{Name: o.Name, Price: o.Price}
					if o.Point != nil {
						point := *o.Point
						outcome.Point = &point
					}
					outcomes = append(outcomes, outcome)
				}
				markets = append(markets, models.Market{Key: m.Key, Outcomes: outcomes})
			}

			bookmakers = append(bookmakers, models.Bookmaker{
				Key:        bm.Key,
				Title:      bm.Title,
				LastUpdate: lastUpdate,
				Markets:    markets,
			})
		}

		events = append(events, models.Event{
			EventID:      event.ID,
			SportKey:     event.SportKey,
			SportTitle:   event.SportTitle,
			HomeTeam:     event.HomeTeam,
			AwayTeam:     event.AwayTeam,
			CommenceTime: commenceTime,
			Bookmakers:   bookmakers,
		})
	}

	return events
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// API response structures matching The Odds API JSON format

type oddsResponse struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []market `json:"markets"`
}

type market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update"`
	Outcomes   []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}
