// internal/authclient/client.go
//
// Hosted auth-provider client.
//
// Context
//   Account identity is delegated to a managed auth service (GoTrue wire
//   surface).  This client wraps the handful of endpoints the platform
//   needs: signup, password sign-in, the OAuth authorize redirect, session
//   introspection, password recovery, and password update.  The provider’s
//   `{data, error}` dual-return convention maps onto Go’s `(T, error)` with
//   *AuthError carrying the provider’s human-readable message.
//
// Workflow
//   •  Every request sends the project anon key; user-scoped calls add the
//      session bearer token.
//   •  Non-2xx responses are decoded into the provider’s error body (the
//      field name varies by endpoint, so several are tried) and surfaced as
//      *AuthError.  Transport failures are returned unwrapped.
//
//------------------------------------------------------------------------------

package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

// AppMetadata is the provider-owned slice of the user record.  Provider is
// "email" for password accounts, otherwise the social identity provider.
type AppMetadata struct {
	Provider string `json:"provider"`
}

// User is the read-only view of a provider account.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	AppMetadata  AppMetadata    `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Session is the provider-issued session view.  The platform never persists
// it; lifetime is controlled entirely by the provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// SignUpParams carries the signup request.  Metadata travels as provider-side
// user metadata; EmailRedirectTo is where the confirmation link lands.
type SignUpParams struct {
	Email           string
	Password        string
	Metadata        map[string]any
	EmailRedirectTo string
}

// SignUpResult distinguishes the two provider behaviours: with auto-confirm
// enabled Session is non-nil immediately; otherwise only User is set and the
// session arrives later via the confirmation callback.
type SignUpResult struct {
	Session *Session
	User    *User
}

// AuthError is a provider rejection.  Message is surfaced verbatim to the
// user, matching the provider’s own copy.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client talks to one auth-provider project.  Safe for concurrent use.
type Client struct {
	baseURL string
	anonKey string
	httpc   *http.Client
}

// New returns a Client for the project at baseURL (no trailing slash
// required) authenticated with the public anon key.
func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: trimSlash(baseURL),
		anonKey: anonKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SignUp requests account creation.  Provider-side validation failures (weak
// password, duplicate email, and so on) come back as *AuthError.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*SignUpResult, error) {
	body := map[string]any{
		"email":    p.Email,
		"password": p.Password,
	}
	if len(p.Metadata) > 0 {
		body["data"] = p.Metadata
	}

	endpoint := c.baseURL + "/auth/v1/signup"
	if p.EmailRedirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(p.EmailRedirectTo)
	}

	raw, err := c.post(ctx, endpoint, "", body)
	if err != nil {
		return nil, err
	}

	// Auto-confirm projects answer with a full session; confirmation-gated
	// projects answer with the bare user record.
	var sess Session
	if err := json.Unmarshal(raw, &sess); err == nil && sess.AccessToken != "" {
		return &SignUpResult{Session: &sess, User: sess.User}, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	return &SignUpResult{User: &u}, nil
}

// SignInWithPassword exchanges email/password credentials for a session via
// the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	raw, err := c.post(ctx, c.baseURL+"/auth/v1/token?grant_type=password", "", map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &sess, nil
}

// OAuthURL builds the provider’s authorize redirect for a social identity
// provider.  extra query params (access_type, prompt, …) pass through to the
// downstream identity provider.
func (c *Client) OAuthURL(provider, redirectTo string, extra map[string]string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	for k, v := range extra {
		q.Set(k, v)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// GetUser introspects an access token and returns the account it belongs to.
// An invalid or expired token comes back as *AuthError.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, accessToken)

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &u, nil
}

// Recover asks the provider to email a password-reset link that lands on
// redirectTo.
func (c *Client) Recover(ctx context.Context, email, redirectTo string) error {
	endpoint := c.baseURL + "/auth/v1/recover"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	_, err := c.post(ctx, endpoint, "", map[string]any{"email": email})
	return err
}

// UpdatePassword sets a new password on the account behind accessToken.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	body, err := json.Marshal(map[string]any{"password": newPassword})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/auth/v1/user", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, accessToken)

	_, err = c.do(req)
	return err
}

// -----------------------------------------------------------------------------
// Transport helpers
// -----------------------------------------------------------------------------

func (c *Client) post(ctx context.Context, endpoint, bearer string, body any) ([]byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, bearer)

	return c.do(req)
}

// setHeaders attaches the anon key plus, when present, the user bearer token.
func (c *Client) setHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{Status: resp.StatusCode, Message: providerMessage(raw, resp.StatusCode)}
	}
	return raw, nil
}

// providerMessage extracts the human-readable error.  The field name varies
// by endpoint, so several are tried in order.
func providerMessage(raw []byte, status int) string {
	var body struct {
		Msg       string `json:"msg"`
		Message   string `json:"message"`
		ErrorDesc string `json:"error_description"`
		ErrorStr  string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	for _, m := range []string{body.Msg, body.Message, body.ErrorDesc, body.ErrorStr} {
		if m != "" {
			return m
		}
	}
	return fmt.Sprintf("auth provider returned status %d", status)
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
