package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/TRIBE-INC/tribe-api/analytics"
	"github.com/TRIBE-INC/tribe-api/filter"
)

var (
	eventsProject string
	eventsType    string
	eventsRange   string
	eventsLimit   int
	eventsQuery   string
	filterExpr    string
	preset        string

	trackName string
	trackData []string
	trackMeta []string

	batchFile string
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List and track usage events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded usage events",
	Long: `List usage events with their summary statistics. Server-side filters
narrow the query; --filter and --preset apply an expression to the returned
events, and --query extracts a single field from each event.`,
	RunE: runEventsList,
}

var eventsTrackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track a single event",
	Long: `Submit one event to the analytics API. Event data and metadata are
given as repeated key=value pairs; numeric and boolean values are typed
automatically.`,
	RunE: runEventsTrack,
}

var eventsBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Track a batch of events from a file",
	Long: `Submit multiple events in one request. The file must contain a JSON
array of events, each with event_name and optional event_data and metadata
objects. Use "-" to read from stdin.`,
	RunE: runEventsBatch,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsTrackCmd)
	eventsCmd.AddCommand(eventsBatchCmd)

	eventsListCmd.Flags().StringVar(&eventsProject, "project", "", "filter by project name")
	eventsListCmd.Flags().StringVar(&eventsType, "type", "", "filter by event type")
	eventsListCmd.Flags().StringVar(&eventsRange, "range", "7d", "time range to query")
	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", 100, "maximum events to return")
	eventsListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	eventsListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	eventsListCmd.Flags().StringVarP(&eventsQuery, "query", "q", "", "print a single field from each event")

	eventsTrackCmd.Flags().StringVar(&trackName, "name", "", "event name (required)")
	eventsTrackCmd.Flags().StringArrayVar(&trackData, "data", nil, "event data as key=value, repeatable")
	eventsTrackCmd.Flags().StringArrayVar(&trackMeta, "meta", nil, "event metadata as key=value, repeatable")
	eventsTrackCmd.MarkFlagRequired("name")

	eventsBatchCmd.Flags().StringVar(&batchFile, "file", "", `JSON file with events, "-" for stdin (required)`)
	eventsBatchCmd.MarkFlagRequired("file")
}

func runEventsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	list, err := apiClient.FetchEvents(ctx, analytics.EventQuery{
		Project:   eventsProject,
		EventType: eventsType,
		TimeRange: eventsRange,
		Limit:     eventsLimit,
	})
	if err != nil {
		return err
	}

	matched, err := applyEventFilter(ctx, list.Events)
	if err != nil {
		return err
	}
	list.Events = matched

	if eventsQuery != "" {
		return printEventField(list.Events, eventsQuery)
	}

	fmt.Print(formatter.FormatEventList(list))
	return nil
}

// applyEventFilter narrows events with the expression from --filter, the
// named preset, or the configured default, in that order. No expression
// means no filtering.
func applyEventFilter(ctx context.Context, events []analytics.Event) ([]analytics.Event, error) {
	if filterExpr == "" && preset != "" {
		if _, ok := cfg.Filter.Presets[preset]; !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		matched, err := filterManager.EvaluateFilter(ctx, preset, events)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("preset", preset).
			Int("matched", len(matched)).
			Int("fetched", len(events)).
			Msg("Applied preset filter")
		return matched, nil
	}

	expr := filterExpr
	if expr == "" {
		expr = cfg.Filter.DefaultExpression
	}
	if expr == "" {
		return events, nil
	}

	matched, err := filter.EvaluateExpression(ctx, expr, events)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	logger.Info().
		Str("filter", expr).
		Int("matched", len(matched)).
		Int("fetched", len(events)).
		Msg("Applied filter")
	return matched, nil
}

// printEventField prints one line per event holding the value at the given
// path. Events without the field are omitted.
func printEventField(events []analytics.Event, path string) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	for _, value := range gjson.GetBytes(payload, "#."+path).Array() {
		fmt.Println(value.String())
	}

	return nil
}

func runEventsTrack(cmd *cobra.Command, args []string) error {
	data, err := parseKeyValues(trackData)
	if err != nil {
		return err
	}
	meta, err := parseKeyValues(trackMeta)
	if err != nil {
		return err
	}

	logger.Info().Str("event", trackName).Msg("Tracking event")

	ctx := context.Background()
	result, err := apiClient.TrackEvent(ctx, analytics.TrackRequest{
		EventName: trackName,
		EventData: data,
		Metadata:  meta,
	})
	if err != nil {
		return err
	}

	fmt.Print(formatter.FormatTrackResult(result))
	return nil
}

func runEventsBatch(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if batchFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(batchFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}

	var events []analytics.TrackRequest
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("invalid batch file: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("batch file contains no events")
	}

	logger.Info().Int("events", len(events)).Msg("Submitting batch")

	ctx := context.Background()
	result, err := apiClient.TrackBatch(ctx, events)
	if err != nil {
		return err
	}

	fmt.Print(formatter.FormatBatchResult(result))
	return nil
}

// parseKeyValues converts repeated key=value flags into a JSON-friendly map
func parseKeyValues(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid key=value pair: %q", pair)
		}
		out[parts[0]] = coerceValue(parts[1])
	}

	return out, nil
}

// coerceValue types values that look like numbers or booleans so they
// serialize as JSON numbers and booleans rather than strings
func coerceValue(raw string) interface{} {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
