package models

import "time"

// Group is the tenant boundary. Every source, expense and recurrence
// belongs to exactly one group.
type Group struct {
	Base
	Name  string      `gorm:"not null" json:"name"`
	Users []GroupUser `gorm:"foreignKey:GroupID" json:"users,omitempty"`
}

// GroupUser links a user to a group.
type GroupUser struct {
	GroupID   string    `gorm:"type:uuid;primaryKey" json:"group_id"`
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
