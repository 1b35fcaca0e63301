// Package analytics provides a client for the Tribe analytics API.
//
// Tribe collects development workflow events (tool invocations, model usage,
// session activity) and serves aggregated insights back to the user. This
// package implements a clean, idiomatic Go client for the analytics,
// event-tracking, and knowledge base endpoints.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: The main API client; one authenticated request per operation
//   - Types: Domain models for insights, events, and articles
//   - API: Interface definitions for testability and modularity
//   - Errors: Structured error types classifying every failure mode
//   - ConsoleFormatter: Terminal rendering for API responses
//
// # Usage
//
// Create a new client with the API origin and your API key:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := analytics.NewClient(
//		analytics.DefaultBaseURL,
//		"tribe_sk_...",
//		logger,
//		analytics.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	events, err := client.FetchEvents(ctx, analytics.EventQuery{TimeRange: "7d"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Error Handling
//
// Every failed call returns exactly one of three error types:
//
//   - TransportError: no HTTP response was received (connection, DNS, timeout)
//   - APIError: the server answered with a non-2xx status; carries the raw body
//   - MalformedResponseError: a 2xx body that could not be decoded as JSON
//
// APIError includes helper methods for classification:
//
//	var apiErr *analytics.APIError
//	if errors.As(err, &apiErr) && apiErr.IsAuthFailure() {
//		// key missing or rejected
//	}
//
// The client never retries and keeps no state between calls.
package analytics
