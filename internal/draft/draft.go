// internal/draft/draft.go
//
// Profile draft model.
//
// Context
//   A draft holds the non-authentication profile fields collected at signup
//   while the account waits for its email-confirmation or OAuth callback.
//   The durable copy in the store NEVER contains a password; the password
//   only rides along in memory when the signup flow hands off immediately
//   under an auto-confirmed session.

package draft

// ProfileDraft is the profile payload pending backend persistence.
type ProfileDraft struct {
	ID           string `json:"id,omitempty"` // generated store identifier
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password,omitempty"` // in-memory only, see Store.Put
}
