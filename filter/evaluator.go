package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/TRIBE-INC/tribe-api/analytics"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator interfaces
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate evaluates a single filter against all events
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, events []analytics.Event) ([]analytics.Event, error) {
	if len(events) == 0 {
		return []analytics.Event{}, nil
	}

	// Small listings are not worth the concurrency overhead
	if len(events) < e.batchSize {
		return e.evaluateSequential(filter, events), nil
	}

	return e.evaluateConcurrent(ctx, filter, events)
}

// EvaluateBatch evaluates multiple filters against events concurrently
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, events []analytics.Event) (map[string][]analytics.Event, error) {
	if len(filters) == 0 || len(events) == 0 {
		return make(map[string][]analytics.Event), nil
	}

	results := make(map[string][]analytics.Event)
	resultChan := make(chan BatchResult, len(filters))

	// Filters run on their own goroutines; the pool is reserved for chunk
	// work, so a filter fanning out chunks never waits on itself.
	var wg sync.WaitGroup
	for name, filter := range filters {
		wg.Add(1)
		name := name
		filter := filter

		go func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				resultChan <- BatchResult{
					FilterName: name,
					Error:      ctx.Err(),
				}
				return
			default:
			}

			matches, err := e.Evaluate(ctx, filter, events)
			resultChan <- BatchResult{
				FilterName: name,
				Matches:    matches,
				Error:      err,
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Filters that error are skipped rather than failing the batch
	for result := range resultChan {
		if result.Error != nil {
			continue
		}
		results[result.FilterName] = result.Matches
	}

	return results, nil
}

// evaluateSequential evaluates a filter against all events sequentially
func (e *ConcurrentEvaluator) evaluateSequential(filter CompiledFilter, events []analytics.Event) []analytics.Event {
	matches := make([]analytics.Event, 0, len(events)/10)
	for _, event := range events {
		if filter.Evaluate(event) {
			matches = append(matches, event)
		}
	}
	return matches
}

// evaluateConcurrent evaluates a filter against events using the worker pool
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, events []analytics.Event) ([]analytics.Event, error) {
	chunkSize := max(len(events)/e.workerCount, e.batchSize)

	type chunkResult struct {
		matches []analytics.Event
		order   int
	}

	resultChan := make(chan chunkResult, (len(events)/chunkSize)+1)
	var wg sync.WaitGroup

	chunkIndex := 0
	for i := 0; i < len(events); i += chunkSize {
		end := min(i+chunkSize, len(events))

		wg.Add(1)
		chunk := events[i:end]
		index := chunkIndex
		chunkIndex++

		err := e.pool.Submit(func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			default:
			}

			matches := make([]analytics.Event, 0, len(chunk)/10)
			for _, event := range chunk {
				if filter.Evaluate(event) {
					matches = append(matches, event)
				}
			}

			resultChan <- chunkResult{matches: matches, order: index}
		})

		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order
	results := make(map[int][]analytics.Event)
	for result := range resultChan {
		results[result.order] = result.matches
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Combine results in chunk order
	totalMatches := 0
	for i := 0; i < len(results); i++ {
		totalMatches += len(results[i])
	}

	allMatches := make([]analytics.Event, 0, totalMatches)
	for i := 0; i < len(results); i++ {
		allMatches = append(allMatches, results[i]...)
	}

	return allMatches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
