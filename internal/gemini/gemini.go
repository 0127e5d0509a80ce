// internal/gemini/gemini.go
//
// Thin client for the Gemini generateContent endpoint backing the on-site
// assistant.
//
// Notes
//   •  Any failure – transport, non-2xx, empty candidate list – collapses to
//      the single user-facing fallback string so the assistant UI always has
//      something to render.
//   •  Requests are rate limited process-wide with a token bucket so a chat
//      burst cannot exhaust the upstream quota.
//
//------------------------------------------------------------------------------

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solarsaarthi/platform/internal/metrics"
)

// Fallback is returned in place of a reply whenever the upstream call fails.
const Fallback = "Sorry, there was an error connecting to Gemini."

// Client calls the generative endpoint.  Safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
	limiter  *rate.Limiter
	log      *zap.SugaredLogger
}

// New builds a Client.  endpoint is the full generateContent URL without the
// key parameter.
func New(endpoint, apiKey string, log *zap.SugaredLogger) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		log:      log,
	}
}

// Wire shapes for the generateContent contract.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Reply sends one user message and returns the model's text answer.  On any
// failure it returns the Fallback string and a nil error; the assistant
// surface never propagates upstream errors to the browser.
func (c *Client) Reply(ctx context.Context, message string) string {
	metrics.ChatRequestsTotal.Inc()

	if err := c.limiter.Wait(ctx); err != nil {
		c.log.Warnw("assistant rate limit wait", "err", err)
		metrics.ChatFallbacksTotal.Inc()
		return Fallback
	}

	text, err := c.generate(ctx, message)
	if err != nil {
		c.log.Errorw("assistant upstream call failed", "err", err)
		metrics.ChatFallbacksTotal.Inc()
		return Fallback
	}
	return text
}

func (c *Client) generate(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: message}}}},
	})
	if err != nil {
		return "", err
	}

	url := c.endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidate list")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
