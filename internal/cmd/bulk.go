package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent requests
const DefaultConcurrency = 4

// BulkResult represents the outcome of one call in a bulk run. Results keep
// the order of the input items.
type BulkResult struct {
	Item    string
	Success bool
	Body    string
	Error   error
}

// runBulkOperation calls operation for every item with bounded parallelism.
// A failing item never cancels the others; items not started before ctx is
// cancelled are reported with the context error.
func runBulkOperation(
	ctx context.Context,
	items []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, item string) (string, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult, len(items))
	total := len(items)
	var done int64
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)

	for i, item := range items {
		g.Go(func() error {
			results[i] = BulkResult{Item: item}

			if err := sem.Acquire(ctx, 1); err != nil {
				results[i].Error = err
				return nil
			}
			defer sem.Release(1)

			if err := ctx.Err(); err != nil {
				results[i].Error = err
				return nil
			}

			body, err := operation(ctx, item)
			results[i].Body = body
			results[i].Error = err
			results[i].Success = err == nil

			if progress && total > 0 {
				current := atomic.AddInt64(&done, 1)
				mu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, total)
				mu.Unlock()
			}
			return nil // don't fail the group on individual errors
		})
	}

	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d\n", atomic.LoadInt64(&done), total)
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}
