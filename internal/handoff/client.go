// internal/handoff/client.go
//
// Session-gated profile persistence client.
//
// Context
//   After the auth provider issues a session, the collected profile draft
//   must reach the persistence API under that session’s bearer token – the
//   “hand-off.”  This client is the single capability every flow shares:
//   send a JSON body with a bearer token to a fixed endpoint and surface
//   non-2xx as a structured error.
//
// Workflow
//   •  PersistProfile POSTs the draft to /api/save-user.  A non-success
//      status is parsed as the endpoint’s {detail} payload and returned as
//      *BackendError; a transport failure (no response at all) becomes a
//      *BackendError with Network set and a generic message.
//   •  FetchProfile GETs /api/user-profile for the account behind the token.
//   •  No retry happens here.  Callers own the retry decision – the signup
//      flow’s “leave the draft parked on failure” IS its retry strategy.
//
//------------------------------------------------------------------------------

package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solarsaarthi/platform/internal/draft"
	"github.com/solarsaarthi/platform/internal/metrics"
)

// BackendError is a failed hand-off.  Network marks transport failures that
// never produced an HTTP response.
type BackendError struct {
	Status  int
	Detail  string
	Network bool
}

func (e *BackendError) Error() string {
	if e.Network {
		return "backend unreachable: " + e.Detail
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Detail)
}

// Profile is the stored record returned by the profile-read endpoint.
type Profile struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	MobileNumber  string `json:"mobileNumber"`
	IsSocialLogin bool   `json:"isSocialLogin"`
}

// Client talks to the profile persistence API.  Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New returns a Client for the persistence API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// savePayload is the wire shape of /api/save-user.  Password is always
// present; the empty string marks a social-login profile.
type savePayload struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// PersistProfile sends d under bearer to the persistence endpoint.
func (c *Client) PersistProfile(ctx context.Context, d draft.ProfileDraft, bearer string) error {
	metrics.HandoffTotal.Inc()

	body, err := json.Marshal(savePayload{
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		MobileNumber: d.MobileNumber,
		Password:     d.Password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/save-user", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.HandoffErrorsTotal.Inc()
		return &BackendError{Network: true, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.HandoffErrorsTotal.Inc()
		return &BackendError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	return nil
}

// FetchProfile returns the stored profile for the account behind bearer.
func (c *Client) FetchProfile(ctx context.Context, bearer string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user-profile", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &BackendError{Network: true, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// readDetail extracts the {detail} message, falling back to a generic one.
func readDetail(r io.Reader) string {
	var body struct {
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 1<<20))
	_ = json.Unmarshal(raw, &body)
	if body.Detail != "" {
		return body.Detail
	}
	return "request rejected"
}
