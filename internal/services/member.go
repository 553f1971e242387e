package services

import (
	"errors"
	"fmt"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

type MemberService struct {
	db    *gorm.DB
	authz *authz.Service
}

func NewMemberService(db *gorm.DB, authzSvc *authz.Service) *MemberService {
	return &MemberService{db: db, authz: authzSvc}
}

type InviteMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	RoleID uint `json:"role_id" binding:"required"`
}

type ChangeRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

// List returns the project's members with user and role preloaded.
func (s *MemberService) List(userID, projectID uint) ([]models.ProjectMember, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	var members []models.ProjectMember
	if err := s.db.Preload("User").Preload("Role").
		Where("project_id = ?", projectID).
		Joins("JOIN roles ON roles.id = project_members.role_id").
		Order("roles.position ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Invite adds a user to the project. The actor needs members.invite and
// may only hand out roles strictly below their own.
func (s *MemberService) Invite(actorID, projectID uint, req *InviteMemberRequest) (*models.ProjectMember, error) {
	if err := s.authz.RequirePermission(actorID, projectID, authz.PermMembersInvite); err != nil {
		return nil, err
	}

	canAssign, err := s.authz.CanAssignRole(actorID, projectID, req.RoleID)
	if err != nil {
		return nil, err
	}
	if !canAssign {
		return nil, errors.New("cannot assign a role at or above your own")
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New("user is disabled")
	}

	var existing int64
	s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, req.UserID).
		Count(&existing)
	if existing > 0 {
		return nil, fmt.Errorf("user %q is already a member", user.Username)
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		RoleID:    req.RoleID,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").Preload("Role").First(&member, member.ID)
	return &member, nil
}

// ChangeRole moves a member to a different role. The actor must outrank
// the target and the new role must sit strictly below the actor's own.
func (s *MemberService) ChangeRole(actorID, projectID, targetUserID uint, req *ChangeRoleRequest) (*models.ProjectMember, error) {
	canManage, err := s.authz.CanManageMember(actorID, targetUserID, projectID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, errors.New("cannot manage this member")
	}

	canAssign, err := s.authz.CanAssignRole(actorID, projectID, req.RoleID)
	if err != nil {
		return nil, err
	}
	if !canAssign {
		return nil, errors.New("cannot assign a role at or above your own")
	}

	var member models.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, targetUserID).
		First(&member).Error; err != nil {
		return nil, err
	}

	member.RoleID = req.RoleID
	if err := s.db.Save(&member).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").Preload("Role").First(&member, member.ID)
	return &member, nil
}

// Remove kicks a member from the project.
func (s *MemberService) Remove(actorID, projectID, targetUserID uint) error {
	canManage, err := s.authz.CanManageMember(actorID, targetUserID, projectID)
	if err != nil {
		return err
	}
	if !canManage {
		return errors.New("cannot manage this member")
	}

	return s.db.Where("project_id = ? AND user_id = ?", projectID, targetUserID).
		Delete(&models.ProjectMember{}).Error
}

// Leave removes the caller's own membership. The last holder of the
// top role cannot leave; the project would be orphaned.
func (s *MemberService) Leave(userID, projectID uint) error {
	var member models.ProjectMember
	if err := s.db.Preload("Role").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("not a member of this project")
		}
		return err
	}

	if member.Role != nil && member.Role.Position == 0 {
		var owners int64
		s.db.Model(&models.ProjectMember{}).
			Where("project_id = ? AND role_id = ?", projectID, member.RoleID).
			Count(&owners)
		if owners <= 1 {
			return errors.New("the last owner cannot leave the project")
		}
	}

	return s.db.Delete(&member).Error
}
