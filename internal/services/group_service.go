package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/models"
)

// groupService handles groups and their memberships.
type groupService struct {
	db *gorm.DB
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB) GroupServicer {
	return &groupService{db: db}
}

// CreateGroup creates a group with the owner as its first member.
func (s *groupService) CreateGroup(ownerID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name", name, "group name is required")
	}

	group := &models.Group{
		Name:  name,
		Users: []models.GroupUser{{UserID: ownerID}},
	}
	if err := s.db.Create(group).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// GetUserGroups lists the groups the user belongs to, ordered by name.
func (s *groupService) GetUserGroups(userID string) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN group_users ON group_users.group_id = groups.id").
		Where("group_users.user_id = ?", userID).
		Order("groups.name").
		Find(&groups).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groups, nil
}

// AddMember adds a user to a group. Adding an existing member is a no-op.
func (s *groupService) AddMember(groupID, userID string) error {
	var group models.Group
	if err := s.db.Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGroupNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	member := models.GroupUser{GroupID: groupID, UserID: userID}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// IsMember reports whether the user belongs to the group.
func (s *groupService) IsMember(groupID, userID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.GroupUser{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// ListGroupIDs returns the ids of every group.
func (s *groupService) ListGroupIDs() ([]string, error) {
	var ids []string
	if err := s.db.Model(&models.Group{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}
