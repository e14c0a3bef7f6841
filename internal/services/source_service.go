package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/models"
)

// sourceService handles funding sources and their share tables.
type sourceService struct {
	db *gorm.DB
}

// NewSourceService creates a new SourceServicer.
func NewSourceService(db *gorm.DB) SourceServicer {
	return &sourceService{db: db}
}

// CreateSource creates a source whose users pay in the given shares. The
// order of shares is kept; it decides who receives remainder cents.
func (s *sourceService) CreateSource(groupID, name string, shares []SourceShare) (*models.Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name", name, "source name is required")
	}
	if len(shares) == 0 {
		return nil, apperrors.InvalidInput("users", 0, "a source needs at least one user")
	}

	source := &models.Source{GroupID: groupID, Name: name}
	seen := make(map[string]bool, len(shares))
	total := 0
	for i, sh := range shares {
		if sh.Share < 0 {
			return nil, apperrors.InvalidInput("shares", sh.Share, "shares must not be negative")
		}
		if seen[sh.UserID] {
			return nil, apperrors.InvalidInput("users", sh.UserID, "each user may appear only once")
		}
		seen[sh.UserID] = true
		total += sh.Share
		source.Users = append(source.Users, models.SourceUser{UserID: sh.UserID, Share: sh.Share, Position: i})
	}
	if total == 0 {
		return nil, apperrors.InvalidInput("shares", total, "total shares must be positive")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var members int64
		if err := tx.Model(&models.GroupUser{}).
			Where("group_id = ? AND user_id IN ?", groupID, keys(seen)).
			Count(&members).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if int(members) != len(seen) {
			return apperrors.InvalidInput("users", len(seen)-int(members), "all source users must be group members")
		}
		if err := tx.Create(source).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}

// GetGroupSources lists the sources of a group with their users.
func (s *sourceService) GetGroupSources(groupID string) ([]models.Source, error) {
	var sources []models.Source
	err := s.db.Preload("Users", orderByPosition).
		Where("group_id = ?", groupID).
		Order("name").
		Find(&sources).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sources, nil
}

// GetSourceByID retrieves a source of the group with its users in order.
func (s *sourceService) GetSourceByID(groupID, sourceID string) (*models.Source, error) {
	return loadSource(s.db, groupID, sourceID)
}

func loadSource(db *gorm.DB, groupID, sourceID string) (*models.Source, error) {
	var source models.Source
	err := db.Preload("Users", orderByPosition).
		Where("id = ? AND group_id = ?", sourceID, groupID).
		First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSourceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &source, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
