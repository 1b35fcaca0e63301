package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Event is a single telemetry record queued for ingestion
type Event struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id,omitempty"`
	EventName string                 `json:"event_name"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent builds a telemetry event with a fresh ID and timestamp
func NewEvent(sessionID, name string, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		EventName: name,
		EventData: data,
		Timestamp: time.Now().UTC(),
	}
}

// ingestRequest wraps events for the ingest endpoint
type ingestRequest struct {
	Events []Event `json:"events"`
}

// IngestResult is the response from the ingest endpoint
type IngestResult struct {
	Success         bool   `json:"success"`
	EventsProcessed int    `json:"events_processed"`
	UserID          string `json:"user_id"`
}

// GenerateRequest is the payload for requesting a generated insight
type GenerateRequest struct {
	InsightType string                 `json:"insight_type"`
	TimePeriod  string                 `json:"time_period"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// GeneratedInsight is an insight produced on demand
type GeneratedInsight struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	InsightType string    `json:"insight_type,omitempty"`
	TimePeriod  string    `json:"time_period,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

// GenerateResult is the response from the insight generation endpoint
type GenerateResult struct {
	Success bool             `json:"success"`
	Insight GeneratedInsight `json:"insight"`
}

// FlushResult aggregates the outcome of a chunked ingest run
type FlushResult struct {
	Requested int
	Processed int
	UserID    string
	Remaining []Event
	Errors    []error
}
