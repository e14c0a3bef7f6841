package models

// Source is a funding origin, such as a shared bank account, together with
// the users that pay from it and their integer shares.
type Source struct {
	Base
	GroupID string       `gorm:"type:uuid;not null;index" json:"group_id"`
	Name    string       `gorm:"not null" json:"name"`
	Users   []SourceUser `gorm:"foreignKey:SourceID" json:"users"`
}

// SourceUser is one user's share in a source. Position keeps the entry order,
// which decides who receives remainder cents when a sum is split.
type SourceUser struct {
	SourceID string `gorm:"type:uuid;primaryKey" json:"-"`
	UserID   string `gorm:"type:uuid;primaryKey" json:"user_id"`
	Share    int    `gorm:"not null" json:"share"`
	Position int    `gorm:"not null" json:"-"`
}

// TotalShares returns the sum of all user shares.
func (s *Source) TotalShares() int {
	total := 0
	for _, u := range s.Users {
		total += u.Share
	}
	return total
}
