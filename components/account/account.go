// components/account/account.go
//
// Account component – signup, login, password recovery, and the auth
// provider callback.
//
// Context
//   Form pages are rendered client-side; this component owns the JSON
//   endpoints those pages submit to, plus the browser-facing OAuth entry and
//   callback routes.  Session state is a provider access token carried in an
//   HttpOnly cookie issued here.
//
//------------------------------------------------------------------------------

package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/solarsaarthi/platform/internal/authclient"
	"github.com/solarsaarthi/platform/internal/component"
	"github.com/solarsaarthi/platform/internal/form"
	"github.com/solarsaarthi/platform/internal/handoff"
	"github.com/solarsaarthi/platform/internal/onboarding"
	"github.com/solarsaarthi/platform/internal/requestinfo"
	"github.com/solarsaarthi/platform/internal/session"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Onboarder runs the signup and callback flows.
type Onboarder interface {
	Signup(ctx context.Context, f form.SignupForm) (*onboarding.SignupResult, error)
	Callback(ctx context.Context, accessToken string) (*onboarding.CallbackOutcome, error)
}

// Authenticator is the slice of the provider client the non-signup routes use.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*authclient.Session, error)
	OAuthURL(provider, redirectTo string, extra map[string]string) string
	Recover(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
}

// ProfileFetcher reads the stored profile for the session's bearer token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, bearer string) (*handoff.Profile, error)
}

// Component encapsulates the account routes.
type Component struct {
	onboard  Onboarder
	auth     Authenticator
	profiles ProfileFetcher
	sessions *session.Manager
	baseURL  string
	log      *zap.SugaredLogger
}

// New wires the component.  baseURL is the public origin used to build the
// callback and reset redirect URLs handed to the provider.
func New(o Onboarder, a Authenticator, pf ProfileFetcher, sm *session.Manager, baseURL string, log *zap.SugaredLogger) *Component {
	return &Component{onboard: o, auth: a, profiles: pf, sessions: sm, baseURL: baseURL, log: log}
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "account" }

// Routes builds and returns the router mounted at “/”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", c.handleSignup)
	r.Post("/login", c.handleLogin)
	r.Post("/logout", c.handleLogout)
	r.Post("/forgot-password", c.handleForgotPassword)
	r.Post("/reset-password", c.handleResetPassword)
	r.Get("/auth/oauth/{provider}", c.handleOAuthStart)
	r.Get("/auth/callback", c.handleCallback)
	r.Get("/api/me", c.handleMe)
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleSignup(w http.ResponseWriter, r *http.Request) {
	var f form.SignupForm
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request body"})
		return
	}

	res, err := c.onboard.Signup(r.Context(), f)
	if err != nil {
		c.writeFlowError(w, r, "signup", err)
		return
	}

	if res.ConfirmationPending {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "confirmation_pending",
			"message": "Check your email to confirm your account.",
		})
		return
	}

	c.sessions.Issue(w, res.Session.AccessToken)
	body := map[string]any{"status": "signed_in"}
	if res.HandoffErr != nil {
		// Account and session exist; only the profile save is outstanding.
		body["warning"] = "Your account was created but saving your profile failed. It will be retried on your next sign-in."
	}
	writeJSON(w, http.StatusOK, body)
}

func (c *Component) handleLogin(w http.ResponseWriter, r *http.Request) {
	var f form.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request body"})
		return
	}
	if errs := f.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}

	sess, err := c.auth.SignInWithPassword(r.Context(), f.Email, f.Password)
	if err != nil {
		c.writeFlowError(w, r, "login", err)
		return
	}

	c.audit(r, "login", f.Email)
	c.sessions.Issue(w, sess.AccessToken)
	writeJSON(w, http.StatusOK, map[string]any{"status": "signed_in"})
}

func (c *Component) handleLogout(w http.ResponseWriter, r *http.Request) {
	c.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "signed_out"})
}

func (c *Component) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request body"})
		return
	}
	if msg := (form.SignupForm{Email: body.Email}).ValidateField(form.FieldEmail); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": form.ErrorSet{form.FieldEmail: msg},
		})
		return
	}

	if err := c.auth.Recover(r.Context(), body.Email, c.baseURL+"/reset-password"); err != nil {
		c.writeFlowError(w, r, "forgot-password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Password reset email sent. Check your inbox.",
	})
}

func (c *Component) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var f form.ResetForm
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request body"})
		return
	}
	if errs := f.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}

	// The recovery link signs the browser in; the token rides the session
	// cookie or, on the first request after redirect, the query string.
	token := r.URL.Query().Get("access_token")
	if token == "" {
		token = c.sessions.Token(r)
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "no session"})
		return
	}

	if err := c.auth.UpdatePassword(r.Context(), token, f.Password); err != nil {
		c.writeFlowError(w, r, "reset-password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password updated. You can sign in now."})
}

func (c *Component) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	extra := map[string]string{}
	if provider == "google" {
		extra["access_type"] = "offline"
		extra["prompt"] = "consent"
	}
	url := c.auth.OAuthURL(provider, c.baseURL+"/auth/callback", extra)
	http.Redirect(w, r, url, http.StatusFound)
}

func (c *Component) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" {
		token = c.sessions.Token(r)
	}

	out, err := c.onboard.Callback(r.Context(), token)
	if err != nil {
		// The outcome still names the landing page; nothing propagates past
		// this handler.
		c.log.Warnw("auth callback failed", "err", err)
		http.Redirect(w, r, out.Redirect, http.StatusFound)
		return
	}

	if out.User != nil {
		c.audit(r, "callback", out.User.Email)
	}
	c.sessions.Issue(w, token)
	http.Redirect(w, r, out.Redirect, http.StatusFound)
}

// handleMe returns the signed-in user's stored profile, proxied through the
// persistence API under the session's bearer token.
func (c *Component) handleMe(w http.ResponseWriter, r *http.Request) {
	token := c.sessions.Token(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "no session"})
		return
	}

	p, err := c.profiles.FetchProfile(r.Context(), token)
	if err != nil {
		var berr *handoff.BackendError
		if errors.As(err, &berr) && !berr.Network {
			writeJSON(w, berr.Status, map[string]any{"message": berr.Detail})
			return
		}
		c.log.Errorw("fetch profile", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": "service temporarily unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// writeFlowError maps flow errors onto HTTP responses: field errors as a 422
// error set, provider rejections with their own status and message, anything
// else as an opaque 502.
func (c *Component) writeFlowError(w http.ResponseWriter, r *http.Request, flow string, err error) {
	var ferr form.Error
	if errors.As(err, &ferr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": ferr.Fields})
		return
	}
	var aerr *authclient.AuthError
	if errors.As(err, &aerr) {
		status := aerr.Status
		if status == 0 {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, map[string]any{"message": aerr.Message})
		return
	}
	c.log.Errorw("account flow failed", "flow", flow, "err", err)
	writeJSON(w, http.StatusBadGateway, map[string]any{"message": "service temporarily unavailable"})
}

// audit logs a successful auth event with the request's client fingerprint.
func (c *Component) audit(r *http.Request, event, email string) {
	fields := []any{"event", event, "email", email}
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		fields = append(fields,
			"ip", ri.Geo.IP,
			"country", ri.Geo.CountryISO,
			"browser", ri.UA.Browser,
			"os", ri.UA.OS,
			"bot", ri.UA.IsBot,
		)
	}
	c.log.Infow("auth event", fields...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
