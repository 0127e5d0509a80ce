// internal/onboarding/orchestrator_test.go
package onboarding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/solarsaarthi/platform/internal/authclient"
	"github.com/solarsaarthi/platform/internal/draft"
	"github.com/solarsaarthi/platform/internal/form"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeProvider struct {
	signUpCalls int
	signUpRes   *authclient.SignUpResult
	signUpErr   error

	getUserCalls int
	user         *authclient.User
	getUserErr   error
}

func (p *fakeProvider) SignUp(_ context.Context, _ authclient.SignUpParams) (*authclient.SignUpResult, error) {
	p.signUpCalls++
	return p.signUpRes, p.signUpErr
}

func (p *fakeProvider) GetUser(_ context.Context, _ string) (*authclient.User, error) {
	p.getUserCalls++
	return p.user, p.getUserErr
}

type fakeDrafts struct {
	parked   map[string]draft.ProfileDraft
	putErr   error
	takeErr  error
	putCalls int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{parked: map[string]draft.ProfileDraft{}}
}

func (s *fakeDrafts) Put(_ context.Context, email string, d draft.ProfileDraft) (string, error) {
	s.putCalls++
	if s.putErr != nil {
		return "", s.putErr
	}
	d.ID = "draft-1"
	d.Password = ""
	s.parked[email] = d
	return d.ID, nil
}

func (s *fakeDrafts) Take(_ context.Context, email string) (*draft.ProfileDraft, error) {
	if s.takeErr != nil {
		return nil, s.takeErr
	}
	d, ok := s.parked[email]
	if !ok {
		return nil, nil
	}
	delete(s.parked, email)
	return &d, nil
}

func (s *fakeDrafts) Restore(_ context.Context, email string, d draft.ProfileDraft) error {
	d.Password = ""
	s.parked[email] = d
	return nil
}

type fakeBackend struct {
	calls   int
	lastD   draft.ProfileDraft
	lastTok string
	err     error
}

func (b *fakeBackend) PersistProfile(_ context.Context, d draft.ProfileDraft, bearer string) error {
	b.calls++
	b.lastD = d
	b.lastTok = bearer
	return b.err
}

func testOrchestrator(p *fakeProvider, ds *fakeDrafts, be *fakeBackend) *Orchestrator {
	return New(p, ds, be, "https://app.test/auth/callback", zap.NewNop().Sugar())
}

func validForm() form.SignupForm {
	return form.SignupForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		MobileNumber:    "9876543210",
		Email:           "ada@example.com",
		Password:        "hunter42",
		ConfirmPassword: "hunter42",
	}
}

// -----------------------------------------------------------------------------
// Signup
// -----------------------------------------------------------------------------

func TestSignupInvalidFormNeverReachesProvider(t *testing.T) {
	p := &fakeProvider{}
	ds := newFakeDrafts()
	be := &fakeBackend{}
	o := testOrchestrator(p, ds, be)

	f := validForm()
	f.Email = "not-an-email"

	_, err := o.Signup(context.Background(), f)
	if !form.IsValidationError(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	if p.signUpCalls != 0 {
		t.Fatalf("provider called %d times on invalid form", p.signUpCalls)
	}
	if ds.putCalls != 0 || be.calls != 0 {
		t.Fatal("draft store or backend touched on invalid form")
	}
}

func TestSignupConfirmationPendingParksDraft(t *testing.T) {
	p := &fakeProvider{signUpRes: &authclient.SignUpResult{
		User: &authclient.User{ID: "u1", Email: "ada@example.com"},
	}}
	ds := newFakeDrafts()
	be := &fakeBackend{}
	o := testOrchestrator(p, ds, be)

	res, err := o.Signup(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !res.ConfirmationPending {
		t.Fatal("want ConfirmationPending")
	}
	if be.calls != 0 {
		t.Fatal("backend must not be called without a session")
	}
	d, ok := ds.parked["ada@example.com"]
	if !ok {
		t.Fatal("draft not parked")
	}
	if d.Password != "" {
		t.Fatal("parked draft carries a password")
	}
	if d.FirstName != "Ada" || d.MobileNumber != "9876543210" {
		t.Fatalf("parked draft fields wrong: %+v", d)
	}
}

func TestSignupProviderRejectionSurfacedNothingParked(t *testing.T) {
	p := &fakeProvider{signUpErr: &authclient.AuthError{Status: 400, Message: "User already registered"}}
	ds := newFakeDrafts()
	o := testOrchestrator(p, ds, &fakeBackend{})

	_, err := o.Signup(context.Background(), validForm())
	var aerr *authclient.AuthError
	if !errors.As(err, &aerr) || aerr.Message != "User already registered" {
		t.Fatalf("want provider AuthError surfaced verbatim, got %v", err)
	}
	if ds.putCalls != 0 {
		t.Fatal("draft parked despite provider rejection")
	}
}

func TestSignupAutoConfirmHandsOffWithPasswordAndClearsDraft(t *testing.T) {
	p := &fakeProvider{signUpRes: &authclient.SignUpResult{
		Session: &authclient.Session{AccessToken: "tok-1"},
		User:    &authclient.User{ID: "u1", Email: "ada@example.com"},
	}}
	ds := newFakeDrafts()
	be := &fakeBackend{}
	o := testOrchestrator(p, ds, be)

	res, err := o.Signup(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.ConfirmationPending || res.Session == nil {
		t.Fatalf("want immediate session, got %+v", res)
	}
	if be.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", be.calls)
	}
	if be.lastTok != "tok-1" {
		t.Fatalf("hand-off bearer = %q", be.lastTok)
	}
	if be.lastD.Password != "hunter42" {
		t.Fatal("immediate hand-off must carry the password")
	}
	if _, ok := ds.parked["ada@example.com"]; ok {
		t.Fatal("draft not cleared after successful hand-off")
	}
}

func TestSignupHandoffFailureRetainsDraft(t *testing.T) {
	p := &fakeProvider{signUpRes: &authclient.SignUpResult{
		Session: &authclient.Session{AccessToken: "tok-1"},
		User:    &authclient.User{ID: "u1", Email: "ada@example.com"},
	}}
	ds := newFakeDrafts()
	be := &fakeBackend{err: errors.New("backend down")}
	o := testOrchestrator(p, ds, be)

	res, err := o.Signup(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.HandoffErr == nil {
		t.Fatal("want HandoffErr recorded")
	}
	if res.Session == nil {
		t.Fatal("session must survive a failed hand-off")
	}
	if _, ok := ds.parked["ada@example.com"]; !ok {
		t.Fatal("draft must be retained after failed hand-off")
	}
}

// -----------------------------------------------------------------------------
// Callback
// -----------------------------------------------------------------------------

func TestCallbackNoTokenIsNoSession(t *testing.T) {
	p := &fakeProvider{}
	o := testOrchestrator(p, newFakeDrafts(), &fakeBackend{})

	out, err := o.Callback(context.Background(), "")
	var aerr *authclient.AuthError
	if !errors.As(err, &aerr) || aerr.Message != "no session" {
		t.Fatalf("want no-session AuthError, got %v", err)
	}
	if out.Redirect != LandingAuthError {
		t.Fatalf("redirect = %q", out.Redirect)
	}
	if p.getUserCalls != 0 {
		t.Fatal("provider consulted without a token")
	}
}

func TestCallbackRejectedTokenIsNoSession(t *testing.T) {
	p := &fakeProvider{getUserErr: &authclient.AuthError{Status: 401, Message: "invalid JWT"}}
	be := &fakeBackend{}
	o := testOrchestrator(p, newFakeDrafts(), be)

	out, err := o.Callback(context.Background(), "bad-token")
	var aerr *authclient.AuthError
	if !errors.As(err, &aerr) || aerr.Message != "no session" {
		t.Fatalf("want no-session AuthError, got %v", err)
	}
	if out.Redirect != LandingAuthError || be.calls != 0 {
		t.Fatalf("outcome %+v backend calls %d", out, be.calls)
	}
}

func TestCallbackSocialSynthesizesDraftFromMetadata(t *testing.T) {
	p := &fakeProvider{user: &authclient.User{
		ID:           "u2",
		Email:        "ada@gmail.example",
		Phone:        "9123456780",
		AppMetadata:  authclient.AppMetadata{Provider: "google"},
		UserMetadata: map[string]any{"full_name": "Ada Lovelace"},
	}}
	ds := newFakeDrafts()
	be := &fakeBackend{}
	o := testOrchestrator(p, ds, be)

	out, err := o.Callback(context.Background(), "tok-social")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if !out.HandedOff || out.Redirect != LandingPath {
		t.Fatalf("outcome %+v", out)
	}
	if be.calls != 1 {
		t.Fatalf("backend calls = %d", be.calls)
	}
	if be.lastD.FirstName != "Ada" || be.lastD.LastName != "Lovelace" {
		t.Fatalf("name split wrong: %+v", be.lastD)
	}
	if be.lastD.MobileNumber != "9123456780" {
		t.Fatalf("phone not carried: %+v", be.lastD)
	}
	if be.lastD.Password != "" {
		t.Fatal("social hand-off must not carry a password")
	}
}

func TestCallbackSocialNameFallback(t *testing.T) {
	p := &fakeProvider{user: &authclient.User{
		ID:           "u3",
		Email:        "grace@fb.example",
		AppMetadata:  authclient.AppMetadata{Provider: "facebook"},
		UserMetadata: map[string]any{"name": "Grace Brewster Hopper"},
	}}
	be := &fakeBackend{}
	o := testOrchestrator(p, newFakeDrafts(), be)

	if _, err := o.Callback(context.Background(), "tok"); err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if be.lastD.FirstName != "Grace" || be.lastD.LastName != "Brewster Hopper" {
		t.Fatalf("name split wrong: %+v", be.lastD)
	}
}

func TestCallbackEmailConsumesParkedDraft(t *testing.T) {
	p := &fakeProvider{user: &authclient.User{
		ID:          "u1",
		Email:       "ada@example.com",
		AppMetadata: authclient.AppMetadata{Provider: "email"},
	}}
	ds := newFakeDrafts()
	ds.parked["ada@example.com"] = draft.ProfileDraft{
		ID: "draft-1", FirstName: "Ada", LastName: "Lovelace", MobileNumber: "9876543210",
	}
	be := &fakeBackend{}
	o := testOrchestrator(p, ds, be)

	out, err := o.Callback(context.Background(), "tok-confirm")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if !out.HandedOff {
		t.Fatal("want hand-off")
	}
	if be.lastD.ID != "draft-1" || be.lastTok != "tok-confirm" {
		t.Fatalf("hand-off wrong: %+v tok %q", be.lastD, be.lastTok)
	}
	if _, ok := ds.parked["ada@example.com"]; ok {
		t.Fatal("draft not consumed")
	}
}

func TestCallbackEmailNoDraftIsIdempotentNoop(t *testing.T) {
	p := &fakeProvider{user: &authclient.User{
		ID:          "u1",
		Email:       "ada@example.com",
		AppMetadata: authclient.AppMetadata{Provider: "email"},
	}}
	be := &fakeBackend{}
	o := testOrchestrator(p, newFakeDrafts(), be)

	out, err := o.Callback(context.Background(), "tok-again")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if be.calls != 0 {
		t.Fatal("backend called with nothing to hand off")
	}
	if out.HandedOff || out.Redirect != LandingPath {
		t.Fatalf("outcome %+v", out)
	}
}

func TestCallbackEmailHandoffFailureRestoresDraft(t *testing.T) {
	p := &fakeProvider{user: &authclient.User{
		ID:          "u1",
		Email:       "ada@example.com",
		AppMetadata: authclient.AppMetadata{Provider: "email"},
	}}
	ds := newFakeDrafts()
	ds.parked["ada@example.com"] = draft.ProfileDraft{ID: "draft-1", FirstName: "Ada"}
	be := &fakeBackend{err: errors.New("backend down")}
	o := testOrchestrator(p, ds, be)

	out, err := o.Callback(context.Background(), "tok")
	if err == nil {
		t.Fatal("want hand-off error surfaced")
	}
	if out.Redirect != LandingAuthError {
		t.Fatalf("redirect = %q", out.Redirect)
	}
	d, ok := ds.parked["ada@example.com"]
	if !ok {
		t.Fatal("draft must be restored after failed hand-off")
	}
	if d.ID != "draft-1" {
		t.Fatalf("restored draft lost its ID: %+v", d)
	}
}
