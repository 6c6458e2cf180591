// ABOUTME: This file implements the bounded-concurrency batch orchestrator
// ABOUTME: Admission stops at the wall-clock deadline; in-flight work always completes
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"cienaga/domain"
)

// Options controls one orchestrator run.
type Options struct {
	// MaxConcurrent is the number of worker calls in flight at once.
	MaxConcurrent int
	// PerItemDelay is the advertised per-item pacing; each completed
	// worker call sleeps PerItemDelay/MaxConcurrent before releasing its
	// slot, which spreads the rate across the concurrency window.
	PerItemDelay time.Duration
	// Deadline is the wall-clock budget. Once it elapses no further items
	// are admitted; in-flight work finishes and partial results return
	// with DeadlineExceeded set.
	Deadline time.Duration
}

// Result pairs one input index with its worker outcome.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Outcome is the full result set of a run, ordered by input index.
type Outcome[R any] struct {
	Results          []Result[R]
	DeadlineExceeded bool
}

// Succeeded counts results without an error among the admitted items.
func (o Outcome[R]) Succeeded() int {
	n := 0
	for _, r := range o.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts results with an error among the admitted items.
func (o Outcome[R]) Failed() int {
	return len(o.Results) - o.Succeeded()
}

// Run applies worker to every item with at most MaxConcurrent calls in
// flight. Worker failures are captured in the result set, never
// propagated; only infrastructure problems (nil worker, cancelled
// context) return an error. Results are keyed by input index regardless
// of completion order.
func Run[T, R any](ctx context.Context, items []T, worker func(context.Context, T) (R, error), opts Options, logger *slog.Logger) (Outcome[R], error) {
	if worker == nil {
		return Outcome[R]{}, fmt.Errorf("%w: nil worker", domain.ErrInvalidInput)
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}

	start := time.Now()
	deadline := func() bool {
		return opts.Deadline > 0 && time.Since(start) >= opts.Deadline
	}
	pacing := opts.PerItemDelay / time.Duration(opts.MaxConcurrent)

	sem := semaphore.NewWeighted(int64(opts.MaxConcurrent))
	outcome := Outcome[R]{}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]Result[R], 0, len(items))
	)

	for index, item := range items {
		if deadline() {
			logger.WarnContext(ctx, "batch deadline reached, stopping admission",
				"admitted", index,
				"total", len(items),
				"elapsed", time.Since(start))
			outcome.DeadlineExceeded = true
			break
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return Outcome[R]{}, fmt.Errorf("batch run interrupted: %w", err)
		}

		wg.Add(1)
		go func(index int, item T) {
			defer wg.Done()
			defer sem.Release(1)

			value, err := worker(ctx, item)

			mu.Lock()
			results = append(results, Result[R]{Index: index, Value: value, Err: err})
			mu.Unlock()

			if pacing > 0 {
				select {
				case <-time.After(pacing):
				case <-ctx.Done():
				}
			}
		}(index, item)
	}

	wg.Wait()

	// Completion order is arbitrary; callers see input order.
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	outcome.Results = results

	return outcome, nil
}
