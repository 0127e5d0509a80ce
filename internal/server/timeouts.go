// internal/server/timeouts.go
//
// Hardened *http.Server construction for the two listeners.
//
// Context
//   The app listener serves the auth flows and the assistant chat proxy; the
//   metrics listener serves Prometheus scrapes.  Both need slow-loris and
//   idle-connection protection, but the write budget must cover the slowest
//   in-process upstream call: the assistant client waits up to 30 s on the
//   generative endpoint, and the chat response can only start after that.
//
//------------------------------------------------------------------------------

package server

import (
	"net/http"
	"time"
)

const (
	readTimeout = 10 * time.Second
	idleTimeout = 60 * time.Second

	// writeTimeout must exceed the assistant upstream client timeout (30 s)
	// with headroom to serialize the reply.
	writeTimeout = 45 * time.Second
)

// New constructs an *http.Server with the platform's timeout policy.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
