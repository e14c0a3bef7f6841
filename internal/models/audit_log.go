package models

// AuditLog records changes that touch more than one expense, such as scoped
// deletes and updates of recurring series.
type AuditLog struct {
	Base
	GroupID      string `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
