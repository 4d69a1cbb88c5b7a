package streamkit_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrymomot/streamkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForValues[T any](t *testing.T, rec *recorder[T], n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(rec.Values()) >= n
	}, time.Second, 5*time.Millisecond)
}

func TestFromSlice(t *testing.T) {
	t.Parallel()

	t.Run("emits nothing before the first request", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromSlice([]int{1, 2, 3})
		rec := newRecorder[int](streamkit.None(), streamkit.None())
		source.Subscribe(rec)

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, rec.Values())
		assert.Empty(t, rec.Completions())
	})

	t.Run("emits exactly the requested amount", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromSlice([]int{1, 2, 3, 4})
		rec := newRecorder[int](streamkit.Finite(2), streamkit.None())
		source.Subscribe(rec)

		waitForValues(t, rec, 2)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int{1, 2}, rec.Values())
		assert.Empty(t, rec.Completions())

		rec.Flow().Request(streamkit.Finite(1))
		waitForValues(t, rec, 3)
		assert.Equal(t, []int{1, 2, 3}, rec.Values())
	})

	t.Run("finishes after the last value", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromSlice([]int{1, 2})
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{1, 2}, rec.Values())
		assert.False(t, rec.Completions()[0].IsFailure())
	})

	t.Run("demand returned per value keeps the pump going", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromSlice([]int{1, 2, 3})
		rec := newRecorder[int](streamkit.Finite(1), streamkit.Finite(1))
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{1, 2, 3}, rec.Values())
	})

	t.Run("cancel stops emission without a terminal signal", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromSlice([]int{1, 2, 3})
		rec := newRecorder[int](streamkit.Finite(1), streamkit.None())
		flow := source.Subscribe(rec)

		waitForValues(t, rec, 1)
		flow.Cancel()
		flow.Request(streamkit.Unbounded())

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int{1}, rec.Values())
		assert.Empty(t, rec.Completions())
	})

	t.Run("each subscriber gets an independent pass", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromSlice([]int{1, 2})
		a := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		b := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(a)
		source.Subscribe(b)

		require.Eventually(t, func() bool {
			return len(a.Completions()) == 1 && len(b.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{1, 2}, a.Values())
		assert.Equal(t, []int{1, 2}, b.Values())
	})
}

func TestFromChannel(t *testing.T) {
	t.Parallel()

	t.Run("delivers values as they arrive", func(t *testing.T) {
		t.Parallel()

		ch := make(chan string, 4)
		source := streamkit.FromChannel(ch)
		rec := newRecorder[string](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		ch <- "a"
		ch <- "b"
		waitForValues(t, rec, 2)
		assert.Equal(t, []string{"a", "b"}, rec.Values())
	})

	t.Run("channel close finishes the stream", func(t *testing.T) {
		t.Parallel()

		ch := make(chan int, 2)
		ch <- 1
		close(ch)

		source := streamkit.FromChannel(ch)
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{1}, rec.Values())
		assert.False(t, rec.Completions()[0].IsFailure())
	})

	t.Run("stops reading once demand is exhausted", func(t *testing.T) {
		t.Parallel()

		ch := make(chan int, 3)
		ch <- 1
		ch <- 2
		ch <- 3

		source := streamkit.FromChannel(ch)
		rec := newRecorder[int](streamkit.Finite(1), streamkit.None())
		source.Subscribe(rec)

		waitForValues(t, rec, 1)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int{1}, rec.Values())
		assert.Len(t, ch, 2)
	})

	t.Run("cancel stops the pump", func(t *testing.T) {
		t.Parallel()

		ch := make(chan int, 1)
		source := streamkit.FromChannel(ch)
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		flow := source.Subscribe(rec)

		ch <- 1
		waitForValues(t, rec, 1)
		flow.Cancel()

		ch <- 2
		close(ch)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int{1}, rec.Values())
		assert.Empty(t, rec.Completions())
	})
}

func TestFromFunc(t *testing.T) {
	t.Parallel()

	t.Run("pulls one value per unit of demand", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		source := streamkit.FromFunc(func(context.Context) (int64, error) {
			return calls.Add(1), nil
		})
		rec := newRecorder[int64](streamkit.Finite(3), streamkit.None())
		source.Subscribe(rec)

		waitForValues(t, rec, 3)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int64{1, 2, 3}, rec.Values())
		assert.EqualValues(t, 3, calls.Load(), "producer must not run ahead of demand")
	})

	t.Run("io.EOF finishes the stream", func(t *testing.T) {
		t.Parallel()

		values := []string{"a", "b"}
		var idx int
		source := streamkit.FromFunc(func(context.Context) (string, error) {
			if idx >= len(values) {
				return "", io.EOF
			}
			v := values[idx]
			idx++
			return v, nil
		})
		rec := newRecorder[string](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"a", "b"}, rec.Values())
		assert.False(t, rec.Completions()[0].IsFailure())
	})

	t.Run("producer error fails the stream", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		source := streamkit.FromFunc(func(context.Context) (int, error) {
			return 0, errBoom
		})
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		require.True(t, rec.Completions()[0].IsFailure())
		assert.ErrorIs(t, rec.Completions()[0].Err(), errBoom)
	})

	t.Run("cancel aborts the producer context", func(t *testing.T) {
		t.Parallel()

		blocked := make(chan struct{})
		aborted := make(chan struct{})
		source := streamkit.FromFunc(func(ctx context.Context) (int, error) {
			select {
			case <-blocked:
				return 1, nil
			default:
			}
			close(blocked)
			<-ctx.Done()
			close(aborted)
			return 0, ctx.Err()
		})
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		flow := source.Subscribe(rec)

		<-blocked
		flow.Cancel()

		select {
		case <-aborted:
		case <-time.After(time.Second):
			t.Fatal("producer context was not cancelled")
		}

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, rec.Values())
		assert.Empty(t, rec.Completions(), "cancellation must not produce a terminal signal")
	})

	t.Run("nil producer panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { streamkit.FromFunc[int](nil) })
	})
}

func TestFromBatchFunc(t *testing.T) {
	t.Parallel()

	// batchOfLimits returns a batch whose every element records the limit
	// the producer was called with.
	batchOfLimits := func(_ context.Context, limit int) ([]int, error) {
		batch := make([]int, limit)
		for i := range batch {
			batch[i] = limit
		}
		return batch, nil
	}

	t.Run("limit tracks outstanding demand", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromBatchFunc(batchOfLimits, 8)
		rec := newRecorder[int](streamkit.Finite(5), streamkit.None())
		source.Subscribe(rec)

		waitForValues(t, rec, 5)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int{5, 5, 5, 5, 5}, rec.Values())

		rec.Flow().Request(streamkit.Finite(2))
		waitForValues(t, rec, 7)
		assert.Equal(t, []int{5, 5, 5, 5, 5, 2, 2}, rec.Values())
	})

	t.Run("unbounded demand is capped at the batch size", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromBatchFunc(batchOfLimits, 3)
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		flow := source.Subscribe(rec)

		waitForValues(t, rec, 6)
		flow.Cancel()

		for _, v := range rec.Values() {
			assert.Equal(t, 3, v)
		}
	})

	t.Run("io.EOF finishes the stream after the final batch", func(t *testing.T) {
		t.Parallel()

		source := streamkit.FromBatchFunc(func(context.Context, int) ([]string, error) {
			return []string{"a", "b"}, io.EOF
		}, 8)
		rec := newRecorder[string](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"a", "b"}, rec.Values())
		assert.False(t, rec.Completions()[0].IsFailure())
	})

	t.Run("producer error fails the stream and discards the batch", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		source := streamkit.FromBatchFunc(func(context.Context, int) ([]int, error) {
			return []int{1, 2}, errBoom
		}, 8)
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		require.True(t, rec.Completions()[0].IsFailure())
		assert.ErrorIs(t, rec.Completions()[0].Err(), errBoom)
		assert.Empty(t, rec.Values())
	})

	t.Run("empty batches are retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		source := streamkit.FromBatchFunc(func(context.Context, int) ([]int, error) {
			switch calls.Add(1) {
			case 1:
				return nil, nil
			case 2:
				return []int{42}, nil
			default:
				return nil, io.EOF
			}
		}, 8)
		rec := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		source.Subscribe(rec)

		require.Eventually(t, func() bool {
			return len(rec.Completions()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{42}, rec.Values())
		assert.GreaterOrEqual(t, calls.Load(), int64(3))
	})

	t.Run("nil producer panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { streamkit.FromBatchFunc[int](nil, 8) })
	})
}
