// Package wshub fans topic streams out to websocket connections. Each topic
// is a replay stream: new connections receive the topic's recent frames
// before live ones, and slow connections lose frames instead of slowing
// anyone else down.
//
// # Architecture
//
// A Hub maintains one replay subject per topic. Every websocket connection
// becomes a subscriber with its own bounded send queue and a write pump
// enforcing ping/pong keepalive. Publishing walks the topic's subscribers
// exactly once; a connection whose queue is full drops the frame and counts
// it.
//
// # Usage
//
//	var cfg wshub.Config
//	config.MustLoad(&cfg)
//
//	hub := wshub.New(cfg, wshub.WithLogger(log))
//	http.Handle("/ws", hub)
//
//	// Publish frames from anywhere.
//	hub.Publish("orders", orderJSON)
//
//	// Finish a topic; clients receive a close frame.
//	hub.CloseTopic("orders")
//
// Clients connect with the topic name in the query string:
//
//	ws://example.com/ws?topic=orders
//
// # Topic Lifecycle
//
// Topics are created on first use by either Publish or a connection.
// CloseTopic and FailTopic terminate the topic's stream and remove it from
// the hub; connected clients receive a websocket close frame, normal or
// error-coded respectively. A later Publish or connection under the same
// name starts a fresh topic with an empty replay buffer.
//
// # Shutdown
//
// Shutdown finishes every topic and waits for connection pumps to exit:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	if err := hub.Shutdown(ctx); err != nil {
//		log.Error("hub shutdown timed out", logger.Error(err))
//	}
//
// After shutdown the hub rejects publishes with ErrHubClosed and answers
// new connections with 503.
//
// # Observability
//
// Stats reports topic and client counts; Healthcheck matches the probe
// signature core/health expects:
//
//	http.HandleFunc("/health/ready", health.Readiness(log, hub.Healthcheck))
package wshub
