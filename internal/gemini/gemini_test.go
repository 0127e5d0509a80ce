// internal/gemini/gemini_test.go
package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestReplyReturnsModelText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key query = %q", r.URL.Query().Get("key"))
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got := req.Contents[0].Parts[0].Text; got != "how big a panel do I need?" {
			t.Errorf("message = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "Roughly 3 kW for a typical home."}},
				},
			}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", zap.NewNop().Sugar())
	got := c.Reply(context.Background(), "how big a panel do I need?")
	if got != "Roughly 3 kW for a typical home." {
		t.Fatalf("Reply = %q", got)
	}
}

func TestReplyFallsBackOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", zap.NewNop().Sugar())
	if got := c.Reply(context.Background(), "hi"); got != Fallback {
		t.Fatalf("Reply = %q, want fallback", got)
	}
}

func TestReplyFallsBackOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "k", zap.NewNop().Sugar())
	if got := c.Reply(context.Background(), "hi"); got != Fallback {
		t.Fatalf("Reply = %q, want fallback", got)
	}
}

func TestReplyFallsBackWhenRateLimited(t *testing.T) {
	var upstreamCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
	}))
	defer srv.Close()

	c := New(srv.URL, "k", zap.NewNop().Sugar())
	// Zero-burst limiter: Wait fails immediately, no request may go out.
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 0)

	if got := c.Reply(context.Background(), "hi"); got != Fallback {
		t.Fatalf("Reply = %q, want fallback", got)
	}
	if upstreamCalls != 0 {
		t.Fatalf("upstream called %d times while rate limited", upstreamCalls)
	}
}

func TestReplyConsumesLimiterToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{"parts": []map[string]any{{"text": "ok"}}},
			}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k", zap.NewNop().Sugar())
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	if got := c.Reply(context.Background(), "hi"); got != "ok" {
		t.Fatalf("first Reply = %q", got)
	}

	// The single burst token is spent; the next Wait cannot succeed inside
	// the deadline, so the reply degrades to the fallback.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if got := c.Reply(ctx, "hi"); got != Fallback {
		t.Fatalf("second Reply = %q, want fallback", got)
	}
}

func TestReplyFallsBackOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, "k", zap.NewNop().Sugar())
	if got := c.Reply(context.Background(), "hi"); got != Fallback {
		t.Fatalf("Reply = %q, want fallback", got)
	}
}
