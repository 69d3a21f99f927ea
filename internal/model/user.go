// Package model defines the data structures used throughout the application.
package model

// User is the account record as the backend reports it to this client.
//
// HasProfile and IsBankConnected are the two funnel drivers: they start
// false at registration and flip to true exactly once, when the creator
// completes the matching onboarding step. The client treats them as
// monotonic — once observed true in a session they are never demoted
// locally; only a fresh identity fetch can change them.
//
// WHY ProfilePictureURL string (not *string)?
// The backend omits the field until the creator uploads a picture. An empty
// string is a perfectly good "no picture yet" zero value — simpler to work
// with than a nullable pointer and safe to render.
type User struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	HasProfile        bool   `json:"has_profile"`
	IsBankConnected   bool   `json:"is_bank_connected"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Credentials is the email/password pair submitted on the login form.
// The backend's login endpoint takes the email in its "username" form field.
type Credentials struct {
	Email    string
	Password string
}

// Registration is the payload for creating a new creator account.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}
