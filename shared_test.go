package streamkit_test

import (
	"errors"
	"testing"

	"github.com/dmitrymomot/streamkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_SingleUpstreamSubscription(t *testing.T) {
	t.Parallel()

	t.Run("many attachments share one source subscription", func(t *testing.T) {
		t.Parallel()

		source := &manualSource[int]{}
		shared := streamkit.Replay[int](source, 2)

		for i := 0; i < 3; i++ {
			shared.Attach(newRecorder[int](streamkit.None(), streamkit.None()))
		}

		assert.Equal(t, 1, source.SubscribeCount())
		assert.Equal(t, 3, shared.Stats().Subscribers)
	})

	t.Run("attachment alone never activates the source", func(t *testing.T) {
		t.Parallel()

		source := &manualSource[int]{}
		shared := streamkit.Replay[int](source, 2)

		shared.Attach(newRecorder[int](streamkit.None(), streamkit.None()))
		shared.Attach(newRecorder[int](streamkit.None(), streamkit.None()))

		assert.Equal(t, 0, source.LastFlow().RequestCount())
	})

	t.Run("first positive request activates the source exactly once", func(t *testing.T) {
		t.Parallel()

		source := &manualSource[int]{}
		shared := streamkit.Replay[int](source, 2)

		shared.Attach(newRecorder[int](streamkit.None(), streamkit.None()))
		require.Equal(t, 0, source.LastFlow().RequestCount())

		shared.Attach(newRecorder[int](streamkit.Finite(1), streamkit.None()))
		requests := source.LastFlow().Requests()
		require.Len(t, requests, 1)
		assert.True(t, requests[0].IsUnbounded())

		// Further demand from anyone changes nothing upstream.
		sub := shared.Attach(newRecorder[int](streamkit.Finite(5), streamkit.None()))
		sub.Request(streamkit.Finite(10))
		assert.Equal(t, 1, source.LastFlow().RequestCount())
	})

	t.Run("panics on nil source", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { streamkit.Replay[int](nil, 1) })
	})
}

func TestReplay_EndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("source values fan out with replay for late subscribers", func(t *testing.T) {
		t.Parallel()

		source := &manualSource[int]{}
		shared := streamkit.Replay[int](source, 2)

		early := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		shared.Attach(early)

		source.Emit(1)
		source.Emit(2)
		source.Emit(3)
		require.Equal(t, []int{1, 2, 3}, early.Values())

		late := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		shared.Attach(late)
		assert.Equal(t, []int{2, 3}, late.Values())

		source.Emit(4)
		assert.Equal(t, []int{1, 2, 3, 4}, early.Values())
		assert.Equal(t, []int{2, 3, 4}, late.Values())
	})

	t.Run("source failure terminates the shared stream for everyone", func(t *testing.T) {
		t.Parallel()

		errUpstream := errors.New("upstream gone")
		source := &manualSource[int]{}
		shared := streamkit.Replay[int](source, 2)

		early := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		shared.Attach(early)

		source.Emit(1)
		source.Fail(errUpstream)

		require.Len(t, early.Completions(), 1)
		require.ErrorIs(t, early.Completions()[0].Err(), errUpstream)

		// Late subscribers get the history and the same failure.
		late := newRecorder[int](streamkit.Unbounded(), streamkit.None())
		shared.Attach(late)
		assert.Equal(t, []int{1}, late.Values())
		require.Len(t, late.Completions(), 1)
		assert.ErrorIs(t, late.Completions()[0].Err(), errUpstream)

		st := shared.Stats()
		assert.True(t, st.Terminal)
		assert.True(t, st.Failed)
	})

	t.Run("upstream wired after demand is activated immediately", func(t *testing.T) {
		t.Parallel()

		subj := streamkit.NewReplaySubject[int](2)

		first := &manualFlow{}
		subj.Attached(first)
		subj.Attach(newRecorder[int](streamkit.Finite(1), streamkit.None()))
		require.Equal(t, 1, first.RequestCount())

		// Wiring another upstream after demand was signalled requests from
		// it right away.
		second := &manualFlow{}
		subj.Attached(second)
		assert.Equal(t, 1, second.RequestCount())
	})
}
