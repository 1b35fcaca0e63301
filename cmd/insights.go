package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TRIBE-INC/tribe-api/analytics"
	"github.com/TRIBE-INC/tribe-api/telemetry"
)

var (
	unreadOnly    bool
	insightType   string
	insightPeriod string
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "View and generate productivity insights",
}

var insightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List productivity insights",
	Long:  `List the productivity insights generated for your account.`,
	RunE:  runInsightsList,
}

var insightsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an insight on demand",
	Long:  `Request a freshly generated insight from your collected telemetry.`,
	RunE:  runInsightsGenerate,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.AddCommand(insightsListCmd)
	insightsCmd.AddCommand(insightsGenerateCmd)

	insightsListCmd.Flags().BoolVar(&unreadOnly, "unread", false, "show only unread insights")

	insightsGenerateCmd.Flags().StringVar(&insightType, "type", "productivity", "insight type to generate")
	insightsGenerateCmd.Flags().StringVar(&insightPeriod, "period", "week", "time period to analyze")
}

func runInsightsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	list, err := apiClient.FetchInsights(ctx)
	if err != nil {
		return err
	}

	// The server has no unread filter, so trim client-side
	if unreadOnly {
		unread := make([]analytics.Insight, 0, len(list.Insights))
		for _, insight := range list.Insights {
			if !insight.Read {
				unread = append(unread, insight)
			}
		}
		list.Insights = unread
	}

	fmt.Print(formatter.FormatInsightList(list))
	return nil
}

func runInsightsGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger.Info().
		Str("type", insightType).
		Str("period", insightPeriod).
		Msg("Generating insight")

	result, err := telemetryClient.GenerateInsight(ctx, telemetry.GenerateRequest{
		InsightType: insightType,
		TimePeriod:  insightPeriod,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Insight.Title)
	if result.Insight.Description != "" {
		fmt.Printf("\n%s\n", result.Insight.Description)
	}

	return nil
}
