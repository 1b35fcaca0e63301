package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	kbLimit int
	kbQuery string
)

// kbCmd represents the kb command
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Search the knowledge base",
}

var kbSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search knowledge base articles",
	Long:  `Search knowledge base articles by keyword.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runKBSearch,
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbSearchCmd)

	kbSearchCmd.Flags().IntVar(&kbLimit, "limit", 5, "maximum articles to return")
	kbSearchCmd.Flags().StringVarP(&kbQuery, "query", "q", "", "print a single field from each article")
}

func runKBSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger.Info().Str("search", args[0]).Msg("Searching knowledge base")

	list, err := apiClient.SearchArticles(ctx, args[0], kbLimit)
	if err != nil {
		return err
	}

	if kbQuery != "" {
		payload, err := json.Marshal(list.Articles)
		if err != nil {
			return fmt.Errorf("failed to encode articles: %w", err)
		}
		for _, value := range gjson.GetBytes(payload, "#."+kbQuery).Array() {
			fmt.Println(value.String())
		}
		return nil
	}

	fmt.Print(formatter.FormatArticleList(list))
	return nil
}
