package redisstream_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/integration/redisstream"
)

// subscribeRaw opens a confirmed pub/sub subscription for observing what a
// sink publishes.
func subscribeRaw(t *testing.T, client *redis.Client, channel string) *redis.PubSub {
	t.Helper()

	ps := client.Subscribe(context.Background(), channel)
	t.Cleanup(func() { ps.Close() })

	_, err := ps.Receive(context.Background())
	require.NoError(t, err)
	return ps
}

// readRaw returns the next message observed on ps.
func readRaw(t *testing.T, ps *redis.PubSub) *redis.Message {
	t.Helper()

	select {
	case msg := <-ps.Channel():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
		return nil
	}
}

func TestNewSink(t *testing.T) {
	t.Parallel()

	_, client := newSourceEnv(t)
	_, err := redisstream.NewSink(client, "")
	assert.ErrorIs(t, err, redisstream.ErrEmptyChannel)
}

func TestSink_Publish(t *testing.T) {
	t.Parallel()

	t.Run("publishes to the default channel", func(t *testing.T) {
		t.Parallel()

		_, client := newSourceEnv(t)
		ps := subscribeRaw(t, client, "outbound")

		sink, err := redisstream.NewSink(client, "outbound")
		require.NoError(t, err)

		subj := streamkit.NewReplaySubject[redisstream.Message](0)
		subj.Attach(sink)
		subj.Send(redisstream.Message{Payload: "hello"})

		msg := readRaw(t, ps)
		assert.Equal(t, "outbound", msg.Channel)
		assert.Equal(t, "hello", msg.Payload)

		assert.EqualValues(t, 1, sink.Stats().Published)
		assert.Zero(t, sink.Stats().Failed)
	})

	t.Run("routes to the message channel when set", func(t *testing.T) {
		t.Parallel()

		_, client := newSourceEnv(t)
		ps := subscribeRaw(t, client, "priority")

		sink, err := redisstream.NewSink(client, "outbound")
		require.NoError(t, err)

		subj := streamkit.NewReplaySubject[redisstream.Message](0)
		subj.Attach(sink)
		subj.Send(redisstream.Message{Channel: "priority", Payload: "urgent"})

		msg := readRaw(t, ps)
		assert.Equal(t, "priority", msg.Channel)
		assert.Equal(t, "urgent", msg.Payload)
	})

	t.Run("counts publish failures without terminating", func(t *testing.T) {
		t.Parallel()

		mr, client := newSourceEnv(t)

		sink, err := redisstream.NewSink(client, "outbound")
		require.NoError(t, err)

		subj := streamkit.NewReplaySubject[redisstream.Message](0)
		subj.Attach(sink)

		mr.Close()
		subj.Send(redisstream.Message{Payload: "lost"})

		assert.EqualValues(t, 1, sink.Stats().Failed)
		assert.Zero(t, sink.Stats().Published)
		assert.EqualValues(t, 1, subj.Stats().Subscribers, "sink stays attached")
	})
}
