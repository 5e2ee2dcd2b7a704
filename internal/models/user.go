// Package models defines the domain types shared across StockSim.
package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Password material never leaves
// the server; handlers must use SafeUser for responses.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`

	// Password reset flow. ResetTokenHash holds the SHA-256 hex of the
	// token mailed to the user; the plain token is never stored.
	ResetTokenHash    string    `json:"reset_token_hash,omitempty"`
	ResetTokenExpires time.Time `json:"reset_token_expires,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// SafeUser is the wire representation of a user with credential
// fields stripped.
type SafeUser struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Safe returns the response-safe projection of the user.
func (u *User) Safe() SafeUser {
	return SafeUser{
		UserID:    u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
