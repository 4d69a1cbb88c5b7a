// Package redisstream bridges streams to Redis pub/sub.
//
// The package wraps the go-redis client with connection validation, retry
// logic, and two stream adapters: Source turns pub/sub channels into a hot
// Publisher, and Sink republishes a stream into a Redis channel.
//
// # Connection
//
// Connect validates the Redis URL, dials with exponential backoff, and
// verifies connectivity with a ping before returning the client:
//
//	cfg := redisstream.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: 5 * time.Second,
//	}
//
//	client, err := redisstream.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Both redis:// and rediss:// (TLS) URL schemes are supported. Healthcheck
// returns a probe function for readiness endpoints.
//
// # Source
//
// Source is hot and lazy: constructing it opens nothing, and the Redis
// subscription is established once the first subscriber expresses positive
// demand. Messages are fanned out to every attached subscriber, with the
// most recent ones buffered so late subscribers catch up:
//
//	src, err := redisstream.NewSource(client, []string{"orders", "alerts"},
//		redisstream.WithReplay(32),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer src.Close()
//
//	sink := streamkit.NewChannelSink[redisstream.Message](64)
//	src.Subscribe(sink)
//	for msg := range sink.Out() {
//		log.Printf("%s: %s", msg.Channel, msg.Payload)
//	}
//
// Redis pub/sub offers no broker-side flow control, so per-subscriber
// demand gates delivery locally: a subscriber at zero demand has messages
// dropped and counted, never queued. Close releases the subscription and
// finishes the stream for all subscribers.
//
// # Sink
//
// Sink implements Subscriber and republishes every received message:
//
//	sink, err := redisstream.NewSink(client, "outbound")
//	if err != nil {
//		log.Fatal(err)
//	}
//	subject.Attach(sink)
//
// Messages carrying their own channel name are routed there; the rest go to
// the sink's default channel. Publish failures are counted in Stats and
// logged rather than terminating the stream.
//
// # Error Handling
//
// The package defines domain-specific errors that can be checked using
// errors.Is():
//
//   - ErrEmptyConnectionURL: no connection URL provided
//   - ErrFailedToParseRedisConnString: malformed Redis connection URL
//   - ErrRedisNotReady: Redis did not become ready within the timeout
//   - ErrHealthcheckFailed: health check ping failed
//   - ErrNoChannels: source constructed without channels
//   - ErrEmptyChannel: sink constructed without a default channel
//   - ErrSubscribeFailed: the pub/sub subscription could not be confirmed
package redisstream
