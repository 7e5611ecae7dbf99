// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PublicKey is the PEM/base64 text the client
// registered; it is opaque to the server.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	PublicKey    string
	IsStaff      bool
	CreatedAt    time.Time
}

// HasPublicKey reports whether the user can be a share target.
func (u *User) HasPublicKey() bool {
	return u.PublicKey != ""
}
