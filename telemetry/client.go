package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TRIBE-INC/tribe-api/analytics"
)

// DefaultBaseURL is the production telemetry origin used when nothing else
// is configured.
const DefaultBaseURL = "https://telemetry.tribe.dev"

const (
	// chunkSize caps events per ingest request
	chunkSize = 100
	// ingestConcurrency limits parallel ingest requests
	ingestConcurrency = 3
)

// Client wraps the Tribe telemetry service. It shares the analytics call
// wrapper, so both services classify failures identically.
type Client struct {
	api    *analytics.Client
	logger zerolog.Logger
}

// NewClient creates a new telemetry client
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...analytics.Option) (*Client, error) {
	api, err := analytics.NewClient(baseURL, apiKey, logger, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    api,
		logger: logger,
	}, nil
}

// Ingest submits a batch of telemetry events in a single request
func (c *Client) Ingest(ctx context.Context, events []Event) (*IngestResult, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no events to ingest", analytics.ErrInvalidRequest)
	}

	body, err := c.api.Post(ctx, "/telemetry/ingest", ingestRequest{Events: events})
	if err != nil {
		return nil, err
	}

	var result IngestResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &analytics.MalformedResponseError{URL: c.api.BaseURL() + "/telemetry/ingest", Err: err}
	}

	c.logger.Debug().
		Int("processed", result.EventsProcessed).
		Str("user_id", result.UserID).
		Msg("Ingested telemetry events")

	return &result, nil
}

// IngestAll submits events in chunks with bounded concurrency. Chunks that
// fail keep their events in Remaining so callers can re-spool them; other
// chunks still go through.
func (c *Client) IngestAll(ctx context.Context, events []Event) (*FlushResult, error) {
	result := &FlushResult{Requested: len(events)}
	if len(events) == 0 {
		return result, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)

	var mu sync.Mutex

	for i := 0; i < len(events); i += chunkSize {
		chunk := events[i:min(i+chunkSize, len(events))]

		g.Go(func() error {
			res, err := c.Ingest(ctx, chunk)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				c.logger.Warn().
					Err(err).
					Int("events", len(chunk)).
					Msg("Failed to ingest chunk")
				result.Remaining = append(result.Remaining, chunk...)
				result.Errors = append(result.Errors, err)
				// Continue with other chunks
				return nil
			}

			result.Processed += res.EventsProcessed
			if result.UserID == "" {
				result.UserID = res.UserID
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// GenerateInsight requests an on-demand insight from collected telemetry
func (c *Client) GenerateInsight(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.InsightType == "" {
		return nil, fmt.Errorf("%w: insight type is required", analytics.ErrInvalidRequest)
	}

	body, err := c.api.Post(ctx, "/insights/generate", req)
	if err != nil {
		return nil, err
	}

	var result GenerateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &analytics.MalformedResponseError{URL: c.api.BaseURL() + "/insights/generate", Err: err}
	}

	return &result, nil
}
