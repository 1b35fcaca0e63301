package filter

import (
	"context"
	"sync"

	"github.com/TRIBE-INC/tribe-api/analytics"
)

var (
	defaultCompiler     Compiler
	defaultCompilerOnce sync.Once
)

// getDefaultCompiler returns the shared package compiler, creating it on
// first use. The shared compiler caches compiled expressions so repeated
// invocations with the same filter are cheap.
func getDefaultCompiler() Compiler {
	defaultCompilerOnce.Do(func() {
		defaultCompiler = NewExprCompiler(WithCache(100))
	})
	return defaultCompiler
}

// CompileFilter compiles an expression using the shared package compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return getDefaultCompiler().Compile(expression)
}

// EvaluateExpression compiles an expression and returns the matching events
func EvaluateExpression(ctx context.Context, expression string, events []analytics.Event) ([]analytics.Event, error) {
	compiled, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}

	evaluator := NewConcurrentEvaluator()
	defer evaluator.Stop(ctx)

	return evaluator.Evaluate(ctx, compiled, events)
}

// EvaluateFilters compiles and evaluates a set of named filters against events
func EvaluateFilters(ctx context.Context, filters map[string]string, events []analytics.Event) (map[string][]analytics.Event, error) {
	manager := NewManager()
	defer manager.Close(ctx)

	if err := manager.RegisterFilters(filters); err != nil {
		return nil, err
	}

	return manager.EvaluateAll(ctx, events)
}
