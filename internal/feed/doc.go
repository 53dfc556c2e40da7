// Package feed broadcasts JSON messages to websocket subscribers.
//
// Publish never blocks: every client has a bounded queue drained by its own
// writer goroutine, and a client whose queue is full is disconnected. New
// clients receive the most recent message first.
//
// # Usage
//
//	hub := feed.New(feed.WithLogger(logger))
//	mux.Handle("/ws", hub)
//	hub.Publish("state", state)
package feed
