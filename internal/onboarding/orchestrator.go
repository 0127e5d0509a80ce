// internal/onboarding/orchestrator.go
//
// Account onboarding orchestration – the signup half.
//
// Context
//   Signup sequences the calls that turn a validated form into a provider
//   account plus a persisted profile: create the account with the auth
//   provider, park a password-free draft in the pending hand-off store,
//   then – if the provider auto-confirmed and issued a session on the spot –
//   hand the full profile (with password) to the persistence API under that
//   session’s bearer token and clear the parked draft.  When no session
//   exists yet the draft stays parked for the confirmation callback to
//   consume later.
//
// Failure semantics
//   •  Provider rejection: surfaced verbatim, nothing written, no backend
//      call made.
//   •  Draft-store failure after provider success: surfaced; the account
//      exists provider-side and a later login will still work, but the
//      profile hand-off is lost, so this is treated as an error.
//   •  Hand-off failure after provider success: logged and reported on the
//      result, the provider account is NOT rolled back, and the parked
//      draft is retained – retention is the retry strategy; the callback
//      path picks it up.
//
//------------------------------------------------------------------------------

package onboarding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/solarsaarthi/platform/internal/authclient"
	"github.com/solarsaarthi/platform/internal/draft"
	"github.com/solarsaarthi/platform/internal/form"
	"github.com/solarsaarthi/platform/internal/metrics"
)

// -----------------------------------------------------------------------------
// Collaborator interfaces
// -----------------------------------------------------------------------------

// Provider is the slice of the auth-provider client the flows need.
type Provider interface {
	SignUp(ctx context.Context, p authclient.SignUpParams) (*authclient.SignUpResult, error)
	GetUser(ctx context.Context, accessToken string) (*authclient.User, error)
}

// DraftStore parks profile drafts between signup and confirmation.
type DraftStore interface {
	Put(ctx context.Context, email string, d draft.ProfileDraft) (string, error)
	Take(ctx context.Context, email string) (*draft.ProfileDraft, error)
	Restore(ctx context.Context, email string, d draft.ProfileDraft) error
}

// Persister is the session-gated backend hand-off.
type Persister interface {
	PersistProfile(ctx context.Context, d draft.ProfileDraft, bearer string) error
}

// -----------------------------------------------------------------------------
// Orchestrator
// -----------------------------------------------------------------------------

// Orchestrator owns the signup and callback flows.  Safe for concurrent use.
type Orchestrator struct {
	provider    Provider
	drafts      DraftStore
	backend     Persister
	callbackURL string // public address the provider redirects back to
	log         *zap.SugaredLogger
}

// New wires an Orchestrator.  callbackURL is the absolute public URL of the
// /auth/callback route.
func New(p Provider, ds DraftStore, be Persister, callbackURL string, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		provider:    p,
		drafts:      ds,
		backend:     be,
		callbackURL: callbackURL,
		log:         log,
	}
}

// SignupResult reports how far the flow got.
type SignupResult struct {
	// ConfirmationPending is true when the provider gated the account on an
	// email confirmation and no session exists yet.
	ConfirmationPending bool

	// Session is the provider session when auto-confirm issued one.
	Session *authclient.Session

	// DraftID identifies the parked draft (also set when the immediate
	// hand-off succeeded and the draft was cleared, for log correlation).
	DraftID string

	// HandoffErr records a failed immediate hand-off.  The provider account
	// exists and the draft stays parked; the caller surfaces the message.
	HandoffErr error
}

// Signup runs the onboarding sequence for a submitted form.
//
// Validation is fully recomputed here; a form with any invalid field returns
// form.Error before anything leaves the process.
func (o *Orchestrator) Signup(ctx context.Context, f form.SignupForm) (*SignupResult, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return nil, form.Error{Fields: errs}
	}

	email := strings.TrimSpace(f.Email)

	res, err := o.provider.SignUp(ctx, authclient.SignUpParams{
		Email:    email,
		Password: f.Password,
		Metadata: map[string]any{
			"first_name": f.FirstName,
			"last_name":  f.LastName,
			"mobile":     f.MobileNumber,
		},
		EmailRedirectTo: o.callbackURL,
	})
	if err != nil {
		metrics.SignupErrorsTotal.Inc()
		return nil, err
	}
	metrics.SignupTotal.Inc()

	// Park the password-free draft.  It exists exactly until a hand-off for
	// it succeeds.
	draftID, err := o.drafts.Put(ctx, email, draft.ProfileDraft{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		MobileNumber: f.MobileNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("park profile draft: %w", err)
	}

	o.log.Infow("signup accepted",
		"email", email,
		"draft_id", draftID,
		"auto_confirmed", res.Session != nil,
	)

	if res.Session == nil || res.Session.AccessToken == "" {
		// Confirmation pending: the callback path hands off later.
		return &SignupResult{ConfirmationPending: true, DraftID: draftID}, nil
	}

	// Auto-confirmed: hand off immediately, full draft including password.
	full := draft.ProfileDraft{
		ID:           draftID,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		MobileNumber: f.MobileNumber,
		Password:     f.Password,
	}
	if err := o.backend.PersistProfile(ctx, full, res.Session.AccessToken); err != nil {
		o.log.Errorw("immediate profile hand-off failed, draft retained",
			"email", email, "draft_id", draftID, "err", err)
		return &SignupResult{Session: res.Session, DraftID: draftID, HandoffErr: err}, nil
	}

	// Hand-off succeeded: the parked draft is done.
	if _, err := o.drafts.Take(ctx, email); err != nil {
		o.log.Warnw("clear parked draft after hand-off", "email", email, "err", err)
	}

	return &SignupResult{Session: res.Session, DraftID: draftID}, nil
}
