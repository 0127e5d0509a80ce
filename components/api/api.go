// components/api/api.go
//
// Profile persistence API – the server side of the onboarding hand-off.
//
// Context
//   Requests must carry the provider-issued access token as a bearer.  The
//   token is an HS256 JWT signed with the project secret, audience
//   "authenticated"; the subject claim is the provider user ID and keys the
//   stored row.  Errors go out as {"detail": ...} so callers and the hand-off
//   client share one shape; successes answer with {"message": ...} or the
//   profile document.
//
//------------------------------------------------------------------------------

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/solarsaarthi/platform/internal/component"
	"github.com/solarsaarthi/platform/internal/profile"
)

var _ component.Component = (*Component)(nil)

// Component serves the profile persistence endpoints.
type Component struct {
	repo      *profile.Repository
	jwtSecret []byte
	log       *zap.SugaredLogger
}

// New wires the component.  jwtSecret is the provider project's JWT secret.
func New(repo *profile.Repository, jwtSecret []byte, log *zap.SugaredLogger) *Component {
	return &Component{repo: repo, jwtSecret: jwtSecret, log: log}
}

func (c *Component) Name() string { return "api" }

func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/save-user", c.withAuth(c.handleSaveUser))
	r.Get("/api/user-profile", c.withAuth(c.handleUserProfile))
	return r
}

/*──────────────────────────── Auth ─────────────────────────────────────────*/

// identity is the caller resolved from the bearer token.
type identity struct {
	UserID string
	Email  string
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type authedHandler func(w http.ResponseWriter, r *http.Request, id identity)

// withAuth verifies the bearer JWT and hands the resolved identity to next.
func (c *Component) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeDetail(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		var cl claims
		_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return c.jwtSecret, nil
		}, jwt.WithAudience("authenticated"), jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			c.log.Warnw("bearer token rejected", "err", err)
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if cl.Subject == "" {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next(w, r, identity{UserID: cl.Subject, Email: cl.Email})
	}
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type saveUserRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

func (c *Component) handleSaveUser(w http.ResponseWriter, r *http.Request, id identity) {
	var req saveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	created, err := c.repo.Upsert(r.Context(), profile.UpsertParams{
		UserID:       id.UserID,
		Email:        id.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if err != nil {
		c.log.Errorw("save user", "user_id", id.UserID, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	c.log.Infow("user profile saved", "user_id", id.UserID, "created", created)
	// One message for insert and update; callers treat both as success.
	writeJSON(w, http.StatusOK, map[string]any{"message": "User saved successfully"})
}

func (c *Component) handleUserProfile(w http.ResponseWriter, r *http.Request, id identity) {
	p, err := c.repo.Get(r.Context(), id.UserID)
	if errors.Is(err, profile.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		c.log.Errorw("fetch user profile", "user_id", id.UserID, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"firstName":     p.FirstName,
		"lastName":      p.LastName,
		"mobileNumber":  p.MobileNumber,
		"isSocialLogin": p.IsSocialLogin,
	})
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
