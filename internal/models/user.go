package models

import "time"

// User represents a login identity. Users take part in expenses through
// group membership and source shares.
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	IsActive            bool       `gorm:"not null" json:"is_active"`
	FailedLoginAttempts int        `gorm:"not null" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}
