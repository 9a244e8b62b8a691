package models

import (
	"time"
)

// UserRole defines the staff roles in the system.
type UserRole string

const (
	RoleOwner   UserRole = "owner"
	RoleManager UserRole = "manager"
	RoleKasir   UserRole = "kasir"
	RoleTeknisi UserRole = "teknisi"
)

// ValidRole reports whether r is one of the known staff roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleOwner, RoleManager, RoleKasir, RoleTeknisi:
		return true
	}
	return false
}

// User represents a staff account.
type User struct {
	Base         `bson:",inline"`
	Username     string    `bson:"username" json:"username"`
	FullName     string    `bson:"full_name" json:"full_name"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Role         UserRole  `bson:"role" json:"role"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Store hash, not plaintext
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
