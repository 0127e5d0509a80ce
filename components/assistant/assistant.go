// components/assistant/assistant.go
//
// Assistant component – chat endpoint backed by the Gemini client.
//
//------------------------------------------------------------------------------

package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solarsaarthi/platform/internal/component"
)

var _ component.Component = (*Component)(nil)

// Replier answers a single chat message.
type Replier interface {
	Reply(ctx context.Context, message string) string
}

// Component serves the chat route.
type Component struct {
	replier Replier
}

func New(r Replier) *Component { return &Component{replier: r} }

func (c *Component) Name() string { return "assistant" }

func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/chat", c.handleChat)
	return r
}

func (c *Component) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "message is required"})
		return
	}

	reply := c.replier.Reply(r.Context(), body.Message)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"reply": reply})
}
