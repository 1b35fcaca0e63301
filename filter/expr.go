package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/TRIBE-INC/tribe-api/analytics"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	// Check cache if enabled
	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(CompiledFilter), nil
		}
	}

	// Compile with static environment for validation
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // Allow event properties
		expr.AsBool(),                  // Ensure boolean result
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}

	// Cache if enabled
	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against an event
func (f *exprFilter) Evaluate(event analytics.Event) bool {
	env := createRuntimeEnvironment(event)

	result, err := expr.Run(f.program, env)
	if err != nil {
		// Events that cause evaluation errors are skipped
		return false
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds all helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = time.Now
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(event analytics.Event) map[string]any {
	env := make(map[string]any, 32)

	// Add helper functions
	addHelperFunctions(env)

	// Add event data
	env["Event"] = event

	// Metadata helpers using closures
	env["hasMeta"] = createHasMetaFunc(event.Metadata)
	env["meta"] = createMetaFunc(event.Metadata)
	env["metaString"] = createMetaStringFunc(event.Metadata)
	env["metaNumber"] = createMetaNumberFunc(event.Metadata)

	// Outcome helpers
	env["succeeded"] = createSucceededFunc(event.Success)
	env["failed"] = createFailedFunc(event.Success)

	// Direct event properties for convenience
	env["ID"] = event.ID
	env["Timestamp"] = event.Timestamp
	env["Project"] = event.Project
	env["EventType"] = event.EventType
	env["ToolName"] = event.ToolName
	env["Model"] = event.Model
	env["DurationMs"] = event.DurationMs
	env["InputTokens"] = event.InputTokens
	env["OutputTokens"] = event.OutputTokens
	env["TotalTokens"] = event.TotalTokens
	env["Success"] = event.Success
	env["Metadata"] = event.Metadata

	return env
}

// Helper factory functions for better performance through closures

func createHasMetaFunc(meta map[string]interface{}) func(string) bool {
	return func(key string) bool {
		_, exists := meta[key]
		return exists
	}
}

func createMetaFunc(meta map[string]interface{}) func(string) any {
	return func(key string) any {
		return meta[key]
	}
}

func createMetaStringFunc(meta map[string]interface{}) func(string) string {
	return func(key string) string {
		if val, ok := meta[key].(string); ok {
			return val
		}
		return ""
	}
}

func createMetaNumberFunc(meta map[string]interface{}) func(string) float64 {
	return func(key string) float64 {
		switch val := meta[key].(type) {
		case float64:
			return val
		case int:
			return float64(val)
		case int64:
			return float64(val)
		}
		return 0
	}
}

func createSucceededFunc(success bool) func() bool {
	return func() bool {
		return success
	}
}

func createFailedFunc(success bool) func() bool {
	return func() bool {
		return !success
	}
}
