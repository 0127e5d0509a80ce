// internal/profile/profile.go
//
// Relational storage for user profiles handed off after onboarding.
//
// Workflow
//   Upsert is keyed on the provider user ID.  A repeat hand-off for a known
//   user refreshes the mutable fields (names, mobile number) and leaves the
//   credential columns alone; a first hand-off inserts the full row.  Social
//   accounts carry no password, which is stored as NULL and flagged with
//   is_social_login.
//
//------------------------------------------------------------------------------

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned by Get for an unknown user ID.
var ErrNotFound = errors.New("profile: not found")

// Profile is one stored user row.
type Profile struct {
	UserID        string         `db:"user_id"`
	Email         string         `db:"email"`
	FirstName     string         `db:"first_name"`
	LastName      string         `db:"last_name"`
	MobileNumber  string         `db:"mobile_number"`
	PasswordHash  sql.NullString `db:"password_hash"`
	IsSocialLogin bool           `db:"is_social_login"`
}

// Repository persists profiles in MySQL.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// UpsertParams is a single hand-off payload.
type UpsertParams struct {
	UserID       string
	Email        string
	FirstName    string
	LastName     string
	MobileNumber string
	// Password is the plaintext from an email+password signup, empty for
	// social entries.  It is hashed before touching the database.
	Password string
}

// Upsert inserts or refreshes the profile row for params.UserID and reports
// whether a new row was created.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) (created bool, err error) {
	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM user_profile WHERE user_id = ?)`, p.UserID)
	if err != nil {
		return false, fmt.Errorf("profile lookup: %w", err)
	}

	if exists {
		_, err = r.db.ExecContext(ctx,
			`UPDATE user_profile
			    SET first_name = ?, last_name = ?, mobile_number = ?
			  WHERE user_id = ?`,
			p.FirstName, p.LastName, p.MobileNumber, p.UserID)
		if err != nil {
			return false, fmt.Errorf("profile update: %w", err)
		}
		return false, nil
	}

	var hash sql.NullString
	if p.Password != "" {
		h, herr := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if herr != nil {
			return false, fmt.Errorf("hash password: %w", herr)
		}
		hash = sql.NullString{String: string(h), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_profile
		        (user_id, email, first_name, last_name, mobile_number, password_hash, is_social_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Email, p.FirstName, p.LastName, p.MobileNumber, hash, p.Password == "")
	if err != nil {
		return false, fmt.Errorf("profile insert: %w", err)
	}
	return true, nil
}

// Get returns the stored profile for a provider user ID.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p,
		`SELECT user_id, email, first_name, last_name, mobile_number, password_hash, is_social_login
		   FROM user_profile
		  WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile get: %w", err)
	}
	return &p, nil
}
