// Package model defines domain entities for the application.
package model

import "time"

// UserRole controls access to the admin area.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the application-side record for a Clerk account. It is
// written exclusively by the webhook sync path; ClerkID is the stable
// external key the upsert is keyed on.
type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerk_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
