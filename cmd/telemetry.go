package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/TRIBE-INC/tribe-api/telemetry"
)

var (
	recordName string
	recordData []string
)

// telemetryCmd represents the telemetry command
var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Record and deliver telemetry events",
	Long: `Telemetry events are spooled locally and delivered in batches, so
recording works offline. Run flush to deliver the spool.`,
}

var telemetryRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record an event into the local spool",
	RunE:  runTelemetryRecord,
}

var telemetryFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Deliver spooled events to the telemetry service",
	RunE:  runTelemetryFlush,
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the spool state",
	RunE:  runTelemetryStatus,
}

func init() {
	rootCmd.AddCommand(telemetryCmd)
	telemetryCmd.AddCommand(telemetryRecordCmd)
	telemetryCmd.AddCommand(telemetryFlushCmd)
	telemetryCmd.AddCommand(telemetryStatusCmd)

	telemetryRecordCmd.Flags().StringVar(&recordName, "name", "", "event name (required)")
	telemetryRecordCmd.Flags().StringArrayVar(&recordData, "data", nil, "event data as key=value, repeatable")
	telemetryRecordCmd.MarkFlagRequired("name")
}

// openSpool opens the default spool under the user's home directory
func openSpool() (*telemetry.Spool, error) {
	path, err := telemetry.DefaultSpoolPath()
	if err != nil {
		return nil, err
	}
	return telemetry.NewSpool(path)
}

// sessionID groups events recorded by the same terminal session when the
// caller exports one; otherwise every invocation is its own session.
func sessionID() string {
	if id := os.Getenv("TRIBE_SESSION_ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func runTelemetryRecord(cmd *cobra.Command, args []string) error {
	data, err := parseKeyValues(recordData)
	if err != nil {
		return err
	}

	spool, err := openSpool()
	if err != nil {
		return err
	}

	event := telemetry.NewEvent(sessionID(), recordName, data)
	if err := spool.Append(event); err != nil {
		return fmt.Errorf("failed to spool event: %w", err)
	}

	fmt.Printf("Recorded %s (spool: %d pending)\n", recordName, spool.Len())
	return nil
}

func runTelemetryFlush(cmd *cobra.Command, args []string) error {
	if !cfg.Telemetry.Enabled {
		return fmt.Errorf("telemetry is disabled in config")
	}

	spool, err := openSpool()
	if err != nil {
		return err
	}

	pending := spool.Pending()
	if len(pending) == 0 {
		fmt.Println("Spool is empty, nothing to flush.")
		return nil
	}

	logger.Info().Int("events", len(pending)).Msg("Flushing telemetry spool")

	ctx := context.Background()
	result, err := telemetryClient.IngestAll(ctx, pending)
	if err != nil {
		return err
	}

	// Failed chunks stay spooled for the next flush
	if err := spool.Replace(result.Remaining); err != nil {
		return fmt.Errorf("failed to update spool: %w", err)
	}

	fmt.Printf("Events processed: %d\n", result.Processed)
	if len(result.Remaining) > 0 {
		fmt.Printf("Events remaining: %d\n", len(result.Remaining))
		return fmt.Errorf("%d events failed to deliver", len(result.Remaining))
	}

	return nil
}

func runTelemetryStatus(cmd *cobra.Command, args []string) error {
	spool, err := openSpool()
	if err != nil {
		return err
	}

	fmt.Printf("Pending events: %d\n", spool.Len())
	fmt.Printf("Spool file: %s\n", spool.Path())
	return nil
}
