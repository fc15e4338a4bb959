package model

import "time"

// Roles persisted in the users.role column. The role is recorded at
// registration and echoed back to clients, but no endpoint consults it
// for authorization decisions yet; route-level role enforcement is a
// deliberate follow-up, not current behaviour.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a row in the `users` table. The username is the
// identity key: unique, immutable after creation, and carried as the
// subject of every access token issued for the account. PasswordHash
// holds a bcrypt hash; plaintext passwords are never stored.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name and token subject.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN (defaults to USER).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username (unique)
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
