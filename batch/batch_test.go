package batch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cienaga/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunOrdersResultsByInputIndex(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	worker := func(ctx context.Context, n int) (int, error) {
		// Reverse the natural completion order.
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * 10, nil
	}

	outcome, err := Run(context.Background(), items, worker, Options{MaxConcurrent: 4}, testLogger())
	require.NoError(t, err)
	require.Len(t, outcome.Results, len(items))

	for i, result := range outcome.Results {
		assert.Equal(t, i, result.Index)
		assert.Equal(t, items[i]*10, result.Value)
	}
	assert.False(t, outcome.DeadlineExceeded)
}

func TestRunCapturesWorkerFailures(t *testing.T) {
	errBoom := errors.New("boom")

	worker := func(ctx context.Context, n int) (int, error) {
		if n%2 == 0 {
			return 0, errBoom
		}
		return n, nil
	}

	outcome, err := Run(context.Background(), []int{1, 2, 3, 4}, worker, Options{MaxConcurrent: 2}, testLogger())
	require.NoError(t, err, "worker failures must not propagate")

	assert.Equal(t, 2, outcome.Succeeded())
	assert.Equal(t, 2, outcome.Failed())
	assert.ErrorIs(t, outcome.Results[1].Err, errBoom)
}

func TestRunLimitsConcurrency(t *testing.T) {
	var current, peak atomic.Int32

	worker := func(ctx context.Context, n int) (int, error) {
		now := current.Add(1)
		for {
			observed := peak.Load()
			if now <= observed || peak.CompareAndSwap(observed, now) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return n, nil
	}

	_, err := Run(context.Background(), make([]int, 12), worker, Options{MaxConcurrent: 3}, testLogger())
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunStopsAdmissionAtDeadline(t *testing.T) {
	var calls atomic.Int32

	worker := func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return n, nil
	}

	outcome, err := Run(context.Background(), make([]int, 50), worker, Options{
		MaxConcurrent: 1,
		Deadline:      30 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	assert.True(t, outcome.DeadlineExceeded)
	assert.Less(t, int(calls.Load()), 50)
	// Every admitted item still produced a result.
	assert.Len(t, outcome.Results, int(calls.Load()))
}

func TestRunRejectsNilWorker(t *testing.T) {
	_, err := Run[int, int](context.Background(), []int{1}, nil, Options{}, testLogger())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunEmptyInput(t *testing.T) {
	outcome, err := Run(context.Background(), nil, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, Options{MaxConcurrent: 3}, testLogger())

	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.False(t, outcome.DeadlineExceeded)
}
