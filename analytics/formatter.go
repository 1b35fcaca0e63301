package analytics

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides console output formatting for API responses
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatInsightList formats insights for console display
func (f *ConsoleFormatter) FormatInsightList(list *InsightList) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total insights: %d\n", len(list.Insights))
	fmt.Fprintf(&sb, "Unread: %d\n", list.UnreadCount)

	if len(list.Insights) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	for i, insight := range list.Insights {
		isLast := i == len(list.Insights)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── %s", prefix, insight.Title)
		if !insight.Read {
			sb.WriteString(" [NEW]")
		}
		sb.WriteString("\n")

		indent := "│   "
		if isLast {
			indent = "    "
		}

		if insight.Description != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent, insight.Description)
		}

		tags := "none"
		if len(insight.Tags) > 0 {
			tags = strings.Join(insight.Tags, ", ")
		}
		fmt.Fprintf(&sb, "%sTags: %s\n", indent, tags)

		if !insight.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "%sCreated: %s\n", indent, insight.CreatedAt.Format("2006-01-02"))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	return sb.String()
}

// FormatEventList formats an event listing with its summary stats
func (f *ConsoleFormatter) FormatEventList(list *EventList) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total events: %d\n", list.TotalCount)
	fmt.Fprintf(&sb, "Projects: %d\n", list.Stats.Projects)
	fmt.Fprintf(&sb, "Tools used: %d\n", list.Stats.ToolsUsed)
	fmt.Fprintf(&sb, "Total tokens: %d\n", list.Stats.TotalTokens)

	if len(list.Events) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	for i, event := range list.Events {
		isLast := i == len(list.Events)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── %s", prefix, event.EventType)
		if event.Project != "" {
			fmt.Fprintf(&sb, " [%s]", event.Project)
		}
		if !event.Timestamp.IsZero() {
			fmt.Fprintf(&sb, " %s", event.Timestamp.Format("2006-01-02 15:04"))
		}
		sb.WriteString("\n")

		indent := "│   "
		if isLast {
			indent = "    "
		}

		var details []string
		if event.ToolName != "" {
			details = append(details, fmt.Sprintf("Tool: %s", event.ToolName))
		}
		if event.Model != "" {
			details = append(details, fmt.Sprintf("Model: %s", event.Model))
		}
		if event.TotalTokens > 0 {
			details = append(details, fmt.Sprintf("Tokens: %d", event.TotalTokens))
		}
		if event.DurationMs > 0 {
			details = append(details, fmt.Sprintf("Duration: %dms", event.DurationMs))
		}
		if len(details) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(details, " | "))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	return sb.String()
}

// FormatArticleList formats knowledge base search results
func (f *ConsoleFormatter) FormatArticleList(list *ArticleList) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total results: %d\n", list.Total)
	fmt.Fprintf(&sb, "Showing: %d articles\n", len(list.Articles))

	if len(list.Articles) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	for i, article := range list.Articles {
		isLast := i == len(list.Articles)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── %s\n", prefix, article.Title)

		indent := "│   "
		if isLast {
			indent = "    "
		}

		if article.Summary != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent, article.Summary)
		}

		tags := "none"
		if len(article.Tags) > 0 {
			tags = strings.Join(article.Tags, ", ")
		}
		fmt.Fprintf(&sb, "%sTags: %s\n", indent, tags)

		if article.URL != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent, article.URL)
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	return sb.String()
}

// FormatTrackResult formats the response from a single event submission
func (f *ConsoleFormatter) FormatTrackResult(result *TrackResult) string {
	var sb strings.Builder

	if result.Success {
		fmt.Fprintf(&sb, "Event tracked: %s\n", result.EventID)
	} else {
		fmt.Fprintf(&sb, "⚠️  Event was not accepted: %s\n", result.EventID)
	}

	return sb.String()
}

// FormatBatchResult formats the response from a batch submission
func (f *ConsoleFormatter) FormatBatchResult(result *BatchResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Successfully processed: %d\n", result.Processed)
	fmt.Fprintf(&sb, "Failed: %d\n", result.Failed)

	if result.Success && result.Failed == 0 {
		sb.WriteString("✅ All events tracked successfully\n")
	} else {
		fmt.Fprintf(&sb, "⚠️  %d events failed to track\n", result.Failed)
	}

	return sb.String()
}
