package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsync_Await(t *testing.T) {
	t.Parallel()

	f := Async(context.Background(), 21, func(_ context.Context, v int) (int, error) {
		return v * 2, nil
	})

	res, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.True(t, f.IsComplete())
}

func TestAsync_Error(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	f := Async(context.Background(), 0, func(_ context.Context, _ int) (string, error) {
		return "", wantErr
	})

	res, err := f.Await()
	assert.Empty(t, res)
	assert.ErrorIs(t, err, wantErr)
}

func TestAsync_PreCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := Async(ctx, 0, func(_ context.Context, _ int) (int, error) {
		return 1, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := Async(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
		<-release
		return 7, nil
	})

	_, err := f.AwaitWithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)

	close(release)
	res, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 7, res)
}

func TestSettleAll_CollectsEveryOutcome(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("second failed")
	ctx := context.Background()

	f1 := Async(ctx, 1, func(_ context.Context, v int) (int, error) { return v, nil })
	f2 := Async(ctx, 2, func(_ context.Context, _ int) (int, error) { return 0, wantErr })
	f3 := Async(ctx, 3, func(_ context.Context, v int) (int, error) { return v, nil })

	results, errs := SettleAll(time.Second, f1, f2, f3)

	require.Len(t, results, 3)
	require.Len(t, errs, 3)
	assert.Equal(t, 1, results[0])
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], wantErr)
	assert.Equal(t, 3, results[2])
	assert.NoError(t, errs[2])
}

func TestSettleAll_SharedDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	ctx := context.Background()

	fast := Async(ctx, 0, func(_ context.Context, _ int) (int, error) { return 1, nil })
	slow1 := Async(ctx, 0, func(_ context.Context, _ int) (int, error) {
		<-release
		return 2, nil
	})
	slow2 := Async(ctx, 0, func(_ context.Context, _ int) (int, error) {
		<-release
		return 3, nil
	})

	start := time.Now()
	results, errs := SettleAll(50*time.Millisecond, fast, slow1, slow2)
	elapsed := time.Since(start)

	assert.Equal(t, 1, results[0])
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrTimeout)
	assert.ErrorIs(t, errs[2], ErrTimeout)

	// The deadline is shared, not per future.
	assert.Less(t, elapsed, 150*time.Millisecond)
}

func TestSettleAll_Empty(t *testing.T) {
	t.Parallel()

	results, errs := SettleAll[int](time.Second)
	assert.Empty(t, results)
	assert.Empty(t, errs)
}
