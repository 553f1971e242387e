package authz

import (
	"errors"

	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

// Store is the narrow read interface the engine needs from the data
// store. The engine never writes through it. Implementations may combine
// the lookups into fewer physical queries, but the logical contract is
// these three operations.
type Store interface {
	// FindMembership returns the user's membership in the project with
	// the linked role populated, or (nil, nil) when no membership exists.
	FindMembership(userID, projectID uint) (*models.ProjectMember, error)
	// ListRoles returns the project's roles ordered by position ascending.
	ListRoles(projectID uint) ([]models.Role, error)
	// IsSystemAdmin reports whether the user is a global system
	// administrator. Unknown users are not admins.
	IsSystemAdmin(userID uint) (bool, error)
}

// GormStore implements Store against the relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindMembership(userID, projectID uint) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.db.Where("user_id = ? AND project_id = ?", userID, projectID).
		Preload("Role").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *GormStore) ListRoles(projectID uint) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *GormStore) IsSystemAdmin(userID uint) (bool, error) {
	var user models.User
	err := s.db.Select("id", "is_admin").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
