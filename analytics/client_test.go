package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		baseURL string
		apiKey  string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			baseURL: "http://localhost:8080",
			apiKey:  "test-key",
			wantErr: false,
		},
		{
			name:    "missing URL",
			baseURL: "",
			apiKey:  "test-key",
			wantErr: true,
			errMsg:  "base URL is required",
		},
		{
			name:    "empty key falls back to placeholder",
			baseURL: "http://localhost:8080",
			apiKey:  "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, tt.apiKey, logger)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, client)
			assert.Equal(t, tt.baseURL, client.baseURL)
			if tt.apiKey == "" {
				assert.Equal(t, PlaceholderAPIKey, client.apiKey)
			} else {
				assert.Equal(t, tt.apiKey, client.apiKey)
			}
		})
	}

	t.Run("trailing slash trimmed", func(t *testing.T) {
		client, err := NewClient("http://localhost:8080/", "test-key", logger)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", client.baseURL)
	})
}

func TestClientOptions(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("http://localhost:8080", "test-key", logger, WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("http://localhost:8080", "test-key", logger, WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Equal(t, customClient, client.httpClient)
	})

	t.Run("with user agent", func(t *testing.T) {
		client, err := NewClient("http://localhost:8080", "test-key", logger, WithUserAgent("tribe/1.2.3"))
		require.NoError(t, err)
		assert.Equal(t, "tribe/1.2.3", client.userAgent)
	})
}

func TestGetReturnsBodyUnchanged(t *testing.T) {
	logger := zerolog.Nop()
	fixture := `{"totalCount":2,"events":[{"id":"ev-1","eventType":"tool_use"},{"id":"ev-2","eventType":"session_start"}],"stats":{"projects":1,"toolsUsed":2,"totalTokens":512}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analytics/events", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, fixture)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-key", logger)
	require.NoError(t, err)

	body, err := client.Get(context.Background(), "/analytics/events", nil)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(body))
}

func TestErrorClassification(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("non-2xx becomes APIError with raw body", func(t *testing.T) {
		tests := []struct {
			status int
			body   string
		}{
			{http.StatusBadRequest, `{"error":"missing field"}`},
			{http.StatusUnauthorized, `{"error":"Invalid API key"}`},
			{http.StatusNotFound, `{"error":"unknown route"}`},
			{http.StatusInternalServerError, "internal error"},
			{http.StatusServiceUnavailable, ""},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					fmt.Fprint(w, tt.body)
				}))
				defer server.Close()

				client, err := NewClient(server.URL, "test-key", logger)
				require.NoError(t, err)

				_, err = client.FetchInsights(context.Background())
				require.Error(t, err)

				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, tt.body, apiErr.Body)
				assert.Contains(t, err.Error(), fmt.Sprintf("%d", tt.status))
			})
		}
	})

	t.Run("2xx with invalid JSON becomes MalformedResponseError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>not json</html>")
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		_, err = client.FetchInsights(context.Background())
		require.Error(t, err)

		var malformed *MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("2xx with wrong JSON shape becomes MalformedResponseError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"insights":"not-an-array"}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		_, err = client.FetchInsights(context.Background())
		require.Error(t, err)

		var malformed *MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("connection failure becomes TransportError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client, err := NewClient(serverURL, "test-key", logger)
		require.NoError(t, err)

		_, err = client.FetchInsights(context.Background())
		require.Error(t, err)

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.NotNil(t, transportErr.Unwrap())
	})

	t.Run("placeholder key yields APIError 401 not TransportError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+PlaceholderAPIKey, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"Invalid API key"}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "", logger)
		require.NoError(t, err)

		_, err = client.FetchInsights(context.Background())
		require.Error(t, err)

		var transportErr *TransportError
		assert.False(t, errors.As(err, &transportErr))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsAuthFailure())
		assert.Contains(t, err.Error(), "401")
	})
}

func TestTestConnection(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("reachable API", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"insights":[],"unreadCount":0}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)
		assert.NoError(t, client.TestConnection(context.Background()))
	})

	t.Run("rejected key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "bad-key", logger)
		require.NoError(t, err)

		err = client.TestConnection(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsAuthFailure())
	})
}

func TestFetchInsights(t *testing.T) {
	logger := zerolog.Nop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/analytics/insights", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		fmt.Fprint(w, `{
			"insights": [
				{"id": "in-1", "title": "Peak hours shifted", "tags": ["focus", "schedule"], "read": true},
				{"id": "in-2", "title": "New tool adopted", "read": false}
			],
			"unreadCount": 1
		}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-key", logger)
	require.NoError(t, err)

	list, err := client.FetchInsights(context.Background())
	require.NoError(t, err)

	assert.Len(t, list.Insights, 2)
	assert.Equal(t, 1, list.UnreadCount)
	assert.Equal(t, []string{"focus", "schedule"}, list.Insights[0].Tags)
	assert.Nil(t, list.Insights[1].Tags)
	assert.False(t, list.Insights[1].Read)
}

func TestFetchEvents(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("query parameters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "backend", q.Get("project"))
			assert.Equal(t, "tool_use", q.Get("eventType"))
			assert.Equal(t, "7d", q.Get("timeRange"))
			assert.Equal(t, "50", q.Get("limit"))

			fmt.Fprint(w, `{"totalCount":0,"events":[],"stats":{"projects":0,"toolsUsed":0,"totalTokens":0}}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		_, err = client.FetchEvents(context.Background(), EventQuery{
			Project:   "backend",
			EventType: "tool_use",
			TimeRange: "7d",
			Limit:     50,
		})
		require.NoError(t, err)
	})

	t.Run("zero values omitted from query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.RawQuery)
			fmt.Fprint(w, `{"totalCount":0,"events":[],"stats":{"projects":0,"toolsUsed":0,"totalTokens":0}}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		_, err = client.FetchEvents(context.Background(), EventQuery{})
		require.NoError(t, err)
	})

	t.Run("summary fixture", func(t *testing.T) {
		events := make([]Event, 100)
		for i := range events {
			events[i] = Event{
				ID:        fmt.Sprintf("ev-%d", i),
				EventType: "tool_use",
				Project:   "backend",
			}
		}
		fixture := EventList{
			TotalCount: 7532,
			Events:     events,
			Stats:      EventStats{Projects: 2, ToolsUsed: 5, TotalTokens: 10408},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(fixture)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		list, err := client.FetchEvents(context.Background(), EventQuery{Limit: 100})
		require.NoError(t, err)

		assert.Equal(t, 7532, list.TotalCount)
		assert.Len(t, list.Events, 100)
		assert.Equal(t, 2, list.Stats.Projects)
		assert.Equal(t, 5, list.Stats.ToolsUsed)
		assert.Equal(t, 10408, list.Stats.TotalTokens)
	})
}

func TestTrackEvent(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("submits payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/analytics/events", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var payload map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "deploy_finished", payload["event_name"])
			data, _ := payload["event_data"].(map[string]interface{})
			assert.Equal(t, "production", data["environment"])

			fmt.Fprint(w, `{"event_id":"ev-9000","success":true}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		result, err := client.TrackEvent(context.Background(), TrackRequest{
			EventName: "deploy_finished",
			EventData: map[string]interface{}{"environment": "production"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ev-9000", result.EventID)
		assert.True(t, result.Success)
	})

	t.Run("rejects empty event name", func(t *testing.T) {
		client, err := NewClient("http://localhost:8080", "test-key", logger)
		require.NoError(t, err)

		_, err = client.TrackEvent(context.Background(), TrackRequest{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestTrackBatch(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("submits all events", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/analytics/events/batch", r.URL.Path)

			var payload struct {
				Events []TrackRequest `json:"events"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Len(t, payload.Events, 3)

			fmt.Fprint(w, `{"processed":3,"failed":0,"success":true}`)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-key", logger)
		require.NoError(t, err)

		result, err := client.TrackBatch(context.Background(), []TrackRequest{
			{EventName: "session_start"},
			{EventName: "tool_use"},
			{EventName: "session_end"},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Processed)
		assert.Equal(t, 0, result.Failed)
		assert.True(t, result.Success)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		client, err := NewClient("http://localhost:8080", "test-key", logger)
		require.NoError(t, err)

		_, err = client.TrackBatch(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("rejects unnamed event", func(t *testing.T) {
		client, err := NewClient("http://localhost:8080", "test-key", logger)
		require.NoError(t, err)

		_, err = client.TrackBatch(context.Background(), []TrackRequest{{EventName: "ok"}, {}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestSearchArticles(t *testing.T) {
	logger := zerolog.Nop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge-base/articles", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "deployment", q.Get("search"))
		assert.Equal(t, "5", q.Get("limit"))

		fmt.Fprint(w, `{
			"total": 13,
			"articles": [
				{"id": "kb-1", "title": "Deploying with confidence", "tags": ["ci", "deploy"]}
			]
		}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-key", logger)
	require.NoError(t, err)

	list, err := client.SearchArticles(context.Background(), "deployment", 5)
	require.NoError(t, err)

	assert.Equal(t, 13, list.Total)
	require.Len(t, list.Articles, 1)
	assert.Equal(t, "Deploying with confidence", list.Articles[0].Title)
}

func TestAPIError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &APIError{
			StatusCode: 404,
			Body:       `{"error":"unknown route"}`,
		}
		assert.Equal(t, `analytics API error: status 404: {"error":"unknown route"}`, err.Error())
	})

	t.Run("Error message without body", func(t *testing.T) {
		err := &APIError{StatusCode: 503}
		assert.Equal(t, "analytics API error: status 503", err.Error())
	})

	t.Run("IsAuthFailure", func(t *testing.T) {
		assert.True(t, (&APIError{StatusCode: 401}).IsAuthFailure())
		assert.False(t, (&APIError{StatusCode: 403}).IsAuthFailure())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
		assert.False(t, (&APIError{StatusCode: 500}).IsNotFound())
	})

	t.Run("classification ranges", func(t *testing.T) {
		tests := []struct {
			code          int
			isClientError bool
			isServerError bool
		}{
			{400, true, false},
			{401, true, false},
			{404, true, false},
			{499, true, false},
			{500, false, true},
			{503, false, true},
			{200, false, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			assert.Equal(t, tt.isClientError, err.IsClientError(), "IsClientError(%d)", tt.code)
			assert.Equal(t, tt.isServerError, err.IsServerError(), "IsServerError(%d)", tt.code)
		}
	})
}
