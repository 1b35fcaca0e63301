package filter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/TRIBE-INC/tribe-api/analytics"
)

// generateTestEvents creates test event data
func generateTestEvents(count int) []analytics.Event {
	eventTypes := []string{"tool_use", "session_start", "completion"}
	tools := []string{"search", "editor", "shell"}
	models := []string{"claude-sonnet-4", "gpt-4o", "llama-3"}
	branches := []string{"main", "dev", "feature"}

	events := make([]analytics.Event, count)

	for i := 0; i < count; i++ {
		input := (i * 37) % 4000
		output := (i * 13) % 1200
		events[i] = analytics.Event{
			ID:           fmt.Sprintf("evt-%d", i),
			Timestamp:    time.Now().AddDate(0, 0, -(i % 60)),
			Project:      fmt.Sprintf("project-%d", i%7),
			EventType:    eventTypes[i%len(eventTypes)],
			ToolName:     tools[i%len(tools)],
			Model:        models[i%len(models)],
			DurationMs:   int64(100 + i%2000),
			InputTokens:  input,
			OutputTokens: output,
			TotalTokens:  input + output,
			Success:      i%3 != 0,
			Metadata: map[string]interface{}{
				"branch":  branches[i%len(branches)],
				"retries": float64(i % 4),
			},
		}
	}

	return events
}

// Benchmark filter compilation
func BenchmarkCompileFilter(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `EventType == "tool_use"`},
		{"complex", `EventType == "tool_use" and TotalTokens > 500 and contains(Model, "sonnet")`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			compiler := NewExprCompiler()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := compiler.Compile(tc.expr)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark filter compilation with caching
func BenchmarkCompileFilterWithCache(b *testing.B) {
	compiler := NewExprCompiler(WithCache(100))
	expression := `EventType == "tool_use" and TotalTokens > 500`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := compiler.Compile(expression)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark single filter evaluation
func BenchmarkEvaluateFilter(b *testing.B) {
	events := generateTestEvents(1000)
	filter, _ := CompileFilter(`EventType == "tool_use" and TotalTokens > 1000`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		matches := 0
		for _, event := range events {
			if filter.Evaluate(event) {
				matches++
			}
		}
		_ = matches
	}
}

// Benchmark concurrent evaluation
func BenchmarkEvaluateConcurrent(b *testing.B) {
	events := generateTestEvents(10000)
	filter, _ := CompileFilter(`EventType == "tool_use" and metaNumber("retries") < 2`)
	ctx := context.Background()

	evaluators := []struct {
		name      string
		evaluator *ConcurrentEvaluator
	}{
		{"workers-1", NewConcurrentEvaluator(WithWorkers(1))},
		{"workers-4", NewConcurrentEvaluator(WithWorkers(4))},
		{"workers-8", NewConcurrentEvaluator(WithWorkers(8))},
		{"workers-default", NewConcurrentEvaluator()},
	}

	for _, tc := range evaluators {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := tc.evaluator.Evaluate(ctx, filter, events)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark batch evaluation
func BenchmarkEvaluateBatch(b *testing.B) {
	events := generateTestEvents(5000)
	filters := map[string]string{
		"toolUse":  `EventType == "tool_use"`,
		"recent":   `Timestamp > monthsAgo(1)`,
		"heavy":    `TotalTokens > 3000`,
		"failures": `not Success`,
		"complex":  `EventType == "tool_use" and TotalTokens > 1000 and metaString("branch") == "main"`,
	}

	compiled := make(map[string]CompiledFilter)
	for name, expr := range filters {
		filter, _ := CompileFilter(expr)
		compiled[name] = filter
	}

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := evaluator.EvaluateBatch(ctx, compiled, events)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark helper function performance
func BenchmarkHelperFunctions(b *testing.B) {
	event := analytics.Event{
		Success: true,
		Metadata: map[string]interface{}{
			"branch":  "main",
			"retries": float64(2),
		},
	}

	b.Run("hasMeta", func(b *testing.B) {
		hasMeta := createHasMetaFunc(event.Metadata)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = hasMeta("branch")
		}
	})

	b.Run("metaString", func(b *testing.B) {
		metaString := createMetaStringFunc(event.Metadata)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = metaString("branch")
		}
	})

	b.Run("metaNumber", func(b *testing.B) {
		metaNumber := createMetaNumberFunc(event.Metadata)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = metaNumber("retries")
		}
	})
}
