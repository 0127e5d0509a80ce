// internal/server/timeouts_test.go
package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNewAppliesTimeoutPolicy(t *testing.T) {
	srv := New(":8080", http.NewServeMux())

	if srv.Addr != ":8080" {
		t.Fatalf("addr = %q", srv.Addr)
	}
	if srv.ReadTimeout == 0 || srv.IdleTimeout == 0 {
		t.Fatal("read and idle timeouts must be set")
	}
	// The assistant upstream client waits up to 30 s; a tighter write
	// timeout would sever slow chat replies mid-flight.
	if srv.WriteTimeout <= 30*time.Second {
		t.Fatalf("WriteTimeout = %v, must exceed the 30s assistant upstream timeout", srv.WriteTimeout)
	}
}
