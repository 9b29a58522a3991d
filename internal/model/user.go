package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Users are created on sign-up and never mutated or
// deleted afterwards.  PasswordHash holds a bcrypt digest; the raw
// password is never stored.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – optional display name (NULL when not provided).
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation (UTC).
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name (nullable)
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
}

// Ref is the compact {id, name} form used when an entity is embedded in
// another resource (community owner, member user, member role).
type Ref struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}
