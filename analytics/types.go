package analytics

import "time"

// Insight represents a generated productivity insight
type Insight struct {
	ID          string    `json:"id"`
	Type        string    `json:"type,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Read        bool      `json:"read"`
}

// InsightList is the response from the insights endpoint
type InsightList struct {
	Insights    []Insight `json:"insights"`
	UnreadCount int       `json:"unreadCount"`
}

// Event represents a single recorded usage event
type Event struct {
	ID           string                 `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Project      string                 `json:"project,omitempty"`
	EventType    string                 `json:"eventType"`
	ToolName     string                 `json:"toolName,omitempty"`
	Model        string                 `json:"model,omitempty"`
	DurationMs   int64                  `json:"durationMs,omitempty"`
	InputTokens  int                    `json:"inputTokens,omitempty"`
	OutputTokens int                    `json:"outputTokens,omitempty"`
	TotalTokens  int                    `json:"totalTokens,omitempty"`
	Success      bool                   `json:"success"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventStats summarizes an event listing
type EventStats struct {
	Projects    int `json:"projects"`
	ToolsUsed   int `json:"toolsUsed"`
	TotalTokens int `json:"totalTokens"`
}

// EventList is the response from the events listing endpoint
type EventList struct {
	TotalCount int        `json:"totalCount"`
	Events     []Event    `json:"events"`
	Stats      EventStats `json:"stats"`
}

// EventQuery holds the supported filters for listing events. Zero values
// are omitted from the query string and the server applies its defaults.
type EventQuery struct {
	Project   string
	EventType string
	TimeRange string
	Limit     int
}

// TrackRequest is the payload for submitting a single event
type TrackRequest struct {
	EventName string                 `json:"event_name"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// TrackResult is the response from submitting a single event
type TrackResult struct {
	EventID string `json:"event_id"`
	Success bool   `json:"success"`
}

// batchRequest wraps events for the batch submission endpoint
type batchRequest struct {
	Events []TrackRequest `json:"events"`
}

// BatchResult is the response from the batch submission endpoint
type BatchResult struct {
	Processed int  `json:"processed"`
	Failed    int  `json:"failed"`
	Success   bool `json:"success"`
}

// Article represents a knowledge base article
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	URL       string    `json:"url,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArticleList is the response from the knowledge base search endpoint
type ArticleList struct {
	Total    int       `json:"total"`
	Articles []Article `json:"articles"`
}
