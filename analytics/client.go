package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production API origin used when nothing else is
// configured.
const DefaultBaseURL = "https://api.tribe.dev"

// PlaceholderAPIKey is sent when no key is configured. The server rejects
// it with 401, so unauthenticated calls surface as an APIError rather than
// a local failure.
const PlaceholderAPIKey = "your-api-key-here"

// Client represents a Tribe analytics API client
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new analytics client. The constructor performs no
// network calls; every operation issues exactly one request when invoked.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if apiKey == "" {
		apiKey = PlaceholderAPIKey
	}

	options := defaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	// Ensure baseURL doesn't have trailing slash
	for len(baseURL) > 1 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  options.userAgent,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// do performs a single authenticated request and classifies every failure:
// no response at all is a TransportError, a non-2xx status is an APIError
// carrying the raw body, and a 2xx body that is not JSON is a
// MalformedResponseError. On success the body bytes are returned unchanged.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, payload interface{}) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", reqURL).
		Msg("Calling Tribe API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, &MalformedResponseError{URL: reqURL, Err: errors.New("response body is not valid JSON")}
	}

	return body, nil
}

// TestConnection verifies the API is reachable and the key is accepted
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.FetchInsights(ctx); err != nil {
		return err
	}
	return nil
}

// FetchInsights retrieves productivity insights for the authenticated user
func (c *Client) FetchInsights(ctx context.Context) (*InsightList, error) {
	body, err := c.do(ctx, http.MethodGet, "/analytics/insights", nil, nil)
	if err != nil {
		return nil, err
	}

	var list InsightList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &MalformedResponseError{URL: c.baseURL + "/analytics/insights", Err: err}
	}

	c.logger.Debug().
		Int("count", len(list.Insights)).
		Int("unread", list.UnreadCount).
		Msg("Retrieved insights")

	return &list, nil
}

// FetchEvents retrieves usage events matching the query
func (c *Client) FetchEvents(ctx context.Context, query EventQuery) (*EventList, error) {
	params := url.Values{}
	if query.Project != "" {
		params.Set("project", query.Project)
	}
	if query.EventType != "" {
		params.Set("eventType", query.EventType)
	}
	if query.TimeRange != "" {
		params.Set("timeRange", query.TimeRange)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/analytics/events", params, nil)
	if err != nil {
		return nil, err
	}

	var list EventList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &MalformedResponseError{URL: c.baseURL + "/analytics/events", Err: err}
	}

	c.logger.Debug().
		Int("total", list.TotalCount).
		Int("returned", len(list.Events)).
		Msg("Retrieved events")

	return &list, nil
}

// TrackEvent submits a single usage event
func (c *Client) TrackEvent(ctx context.Context, req TrackRequest) (*TrackResult, error) {
	if req.EventName == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrInvalidRequest)
	}

	body, err := c.do(ctx, http.MethodPost, "/analytics/events", nil, req)
	if err != nil {
		return nil, err
	}

	var result TrackResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &MalformedResponseError{URL: c.baseURL + "/analytics/events", Err: err}
	}

	return &result, nil
}

// TrackBatch submits multiple usage events in one call
func (c *Client) TrackBatch(ctx context.Context, events []TrackRequest) (*BatchResult, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: batch requires at least one event", ErrInvalidRequest)
	}
	for _, event := range events {
		if event.EventName == "" {
			return nil, fmt.Errorf("%w: every batch event needs a name", ErrInvalidRequest)
		}
	}

	body, err := c.do(ctx, http.MethodPost, "/analytics/events/batch", nil, batchRequest{Events: events})
	if err != nil {
		return nil, err
	}

	var result BatchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &MalformedResponseError{URL: c.baseURL + "/analytics/events/batch", Err: err}
	}

	c.logger.Debug().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("Submitted event batch")

	return &result, nil
}

// SearchArticles searches the knowledge base
func (c *Client) SearchArticles(ctx context.Context, search string, limit int) (*ArticleList, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/knowledge-base/articles", params, nil)
	if err != nil {
		return nil, err
	}

	var list ArticleList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &MalformedResponseError{URL: c.baseURL + "/knowledge-base/articles", Err: err}
	}

	return &list, nil
}

// Get performs a raw GET against an API path and returns the JSON body
// unchanged. Callers projecting individual response fields work on these
// bytes directly.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil)
}

// Post performs a raw POST with a JSON payload and returns the response
// body unchanged. The telemetry client builds its endpoints on top of this
// so both services classify failures identically.
func (c *Client) Post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, payload)
}

// BaseURL returns the configured API origin
func (c *Client) BaseURL() string {
	return c.baseURL
}
