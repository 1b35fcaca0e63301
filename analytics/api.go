package analytics

import (
	"context"
	"net/url"
)

// API defines the interface for Tribe analytics operations
type API interface {
	// TestConnection verifies the client can reach the API
	TestConnection(ctx context.Context) error

	// FetchInsights retrieves productivity insights
	FetchInsights(ctx context.Context) (*InsightList, error)

	// FetchEvents retrieves usage events matching the query
	FetchEvents(ctx context.Context, query EventQuery) (*EventList, error)

	// TrackEvent submits a single usage event
	TrackEvent(ctx context.Context, req TrackRequest) (*TrackResult, error)

	// TrackBatch submits multiple usage events in one call
	TrackBatch(ctx context.Context, events []TrackRequest) (*BatchResult, error)

	// SearchArticles searches the knowledge base
	SearchArticles(ctx context.Context, search string, limit int) (*ArticleList, error)

	// Get performs a raw GET and returns the JSON body unchanged
	Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error)

	// Post performs a raw JSON POST and returns the body unchanged
	Post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error)
}
