// internal/onboarding/callback.go
//
// Account onboarding orchestration – the callback half.
//
// Context
//   The auth provider redirects confirmed and social logins back to
//   /auth/callback.  This flow resolves the session’s user, classifies the
//   entry kind, and completes the profile hand-off:
//
//     social user  →  synthesize a draft from provider metadata, hand off.
//     email user   →  consume the parked draft for that email, hand off;
//                     restore the draft when the hand-off fails.
//
//   A confirmed email user with no parked draft (already handed off, or the
//   link was reused) is an idempotent no-op: log and send them home.
//
//------------------------------------------------------------------------------

package onboarding

import (
	"context"
	"strings"

	"github.com/solarsaarthi/platform/internal/authclient"
	"github.com/solarsaarthi/platform/internal/draft"
)

// Landing destinations after a callback.
const (
	LandingPath      = "/"
	LandingAuthError = "/?error=auth-failed"
)

// ErrNoSession is returned when the callback carries no usable session.
var ErrNoSession = &authclient.AuthError{Message: "no session"}

// CallbackOutcome tells the HTTP handler where to send the browser.
type CallbackOutcome struct {
	Redirect  string
	HandedOff bool

	// User is the resolved provider user, nil when the session was unusable.
	User *authclient.User
}

// Callback resolves the session behind accessToken and completes the
// onboarding hand-off.  The returned outcome always carries a redirect, even
// alongside an error, so the handler never has to invent one.
func (o *Orchestrator) Callback(ctx context.Context, accessToken string) (*CallbackOutcome, error) {
	if accessToken == "" {
		return &CallbackOutcome{Redirect: LandingAuthError}, ErrNoSession
	}

	user, err := o.provider.GetUser(ctx, accessToken)
	if err != nil {
		o.log.Warnw("callback session rejected", "err", err)
		return &CallbackOutcome{Redirect: LandingAuthError}, ErrNoSession
	}

	if isSocial(user) {
		d := synthesizeDraft(user)
		if err := o.backend.PersistProfile(ctx, d, accessToken); err != nil {
			o.log.Errorw("social profile hand-off failed",
				"email", user.Email, "provider", user.AppMetadata.Provider, "err", err)
			return &CallbackOutcome{Redirect: LandingAuthError, User: user}, err
		}
		o.log.Infow("social profile handed off",
			"email", user.Email, "provider", user.AppMetadata.Provider)
		return &CallbackOutcome{Redirect: LandingPath, HandedOff: true, User: user}, nil
	}

	// Email confirmation path: consume the parked draft.
	d, err := o.drafts.Take(ctx, user.Email)
	if err != nil {
		o.log.Errorw("take parked draft", "email", user.Email, "err", err)
		return &CallbackOutcome{Redirect: LandingAuthError, User: user}, err
	}
	if d == nil {
		// Already handed off, or the confirmation link was revisited.
		o.log.Infow("callback with no parked draft, nothing to do", "email", user.Email)
		return &CallbackOutcome{Redirect: LandingPath, User: user}, nil
	}

	if err := o.backend.PersistProfile(ctx, *d, accessToken); err != nil {
		o.log.Errorw("confirmed profile hand-off failed, draft restored",
			"email", user.Email, "draft_id", d.ID, "err", err)
		if rerr := o.drafts.Restore(ctx, user.Email, *d); rerr != nil {
			o.log.Errorw("restore parked draft", "email", user.Email, "err", rerr)
		}
		return &CallbackOutcome{Redirect: LandingAuthError, User: user}, err
	}

	o.log.Infow("confirmed profile handed off", "email", user.Email, "draft_id", d.ID)
	return &CallbackOutcome{Redirect: LandingPath, HandedOff: true, User: user}, nil
}

// isSocial reports whether the account entered through an OAuth identity
// provider rather than email+password.
func isSocial(u *authclient.User) bool {
	p := u.AppMetadata.Provider
	return p != "" && p != "email"
}

// synthesizeDraft builds a profile draft from social-provider metadata.  The
// display name comes from full_name with name as the fallback, split on
// whitespace into first token and remainder.  No password travels on this
// path.
func synthesizeDraft(u *authclient.User) draft.ProfileDraft {
	first, last := splitDisplayName(u.UserMetadata)
	return draft.ProfileDraft{
		FirstName:    first,
		LastName:     last,
		MobileNumber: u.Phone,
	}
}

func splitDisplayName(meta map[string]any) (first, last string) {
	var name string
	for _, key := range []string{"full_name", "name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			name = v
			break
		}
	}
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
