// Package server exposes a navigation controller over HTTP.
//
// The API is a chi router:
//
//	GET  /api/state     current navigation state
//	POST /api/navigate  {"path": "/account", "replace": false, "scroll": true}
//	POST /api/back      previous history entry
//	POST /api/forward   next history entry
//	GET  /api/history   history entries and index
//	GET  /api/routes    root route table in configuration form
//	PUT  /api/viewport  {"x": 0, "y": 300}, the client's scroll offset
//	GET  /ws            websocket feed of state transitions
//	GET  /metrics       Prometheus metrics
//	GET  /healthz       liveness
//
// Navigation endpoints block until the navigation settles and answer with
// the outcome. A navigation superseded by a newer one answers 409 Conflict;
// a path nothing matches answers 404; a failed bundle load answers 502.
//
// # Usage
//
//	hub := feed.New()
//	ctrl, _ := navigation.New(table, loader,
//	    navigation.WithStateListener(server.Broadcast(hub)),
//	)
//	srv := server.New(ctrl, hub, nil)
//	err := srv.Run(ctx)
package server
