package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the Tribe API",
	Long:  `Test the connection to the Tribe API and display basic account information.`,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to Tribe at %s...\n", cfg.API.BaseURL)

	ctx := context.Background()
	list, err := apiClient.FetchInsights(ctx)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Println("✓ Connection successful!")

	fmt.Printf("\nAccount statistics:\n")
	fmt.Printf("- Total insights: %d\n", len(list.Insights))
	fmt.Printf("- Unread insights: %d\n", list.UnreadCount)

	if cfg.Telemetry.Enabled {
		fmt.Printf("\nTelemetry: enabled (%s)\n", cfg.Telemetry.BaseURL)
	} else {
		fmt.Println("\nTelemetry: disabled")
	}

	return nil
}
