package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// Default board columns seeded for every new project.
var defaultBoardColumns = []string{"Backlog", "In Progress", "Done"}

type ProjectService struct {
	db    *gorm.DB
	authz *authz.Service
}

func NewProjectService(db *gorm.DB, authzSvc *authz.Service) *ProjectService {
	return &ProjectService{db: db, authz: authzSvc}
}

type CreateProjectRequest struct {
	Key         string `json:"key" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IMEnabled   bool   `json:"im_enabled"`
	IMBotID     *uint  `json:"im_bot_id"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description *string `json:"description"`
	IMEnabled   *bool  `json:"im_enabled"`
	IMBotID     *uint  `json:"im_bot_id"`
}

// Create provisions a new project: the project row, the three built-in
// roles, the creator's Owner membership and the default board columns
// are written in one transaction, so a project can never be observed
// without its role set.
func (s *ProjectService) Create(req *CreateProjectRequest, userID uint) (*models.Project, error) {
	req.Key = strings.ToUpper(strings.TrimSpace(req.Key))
	if !projectKeyPattern.MatchString(req.Key) {
		return nil, errors.New("project key must be 2-10 uppercase letters or digits, starting with a letter")
	}

	project := models.Project{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
		IMEnabled:   req.IMEnabled,
		IMBotID:     req.IMBotID,
		CreatedBy:   userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Project{}).Where("key = ?", req.Key).Count(&count)
		if count > 0 {
			return fmt.Errorf("project key %q already exists", req.Key)
		}

		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		var ownerRoleID uint
		for _, tpl := range authz.DefaultRoleTemplates() {
			perms := make(models.PermissionList, 0, len(tpl.Permissions))
			for _, p := range tpl.Permissions {
				perms = append(perms, string(p))
			}
			role := models.Role{
				ProjectID:   project.ID,
				Name:        tpl.Name,
				Position:    tpl.Position,
				Permissions: perms,
				IsDefault:   tpl.IsDefault,
			}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
			if tpl.Position == 0 {
				ownerRoleID = role.ID
			}
		}

		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			RoleID:    ownerRoleID,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		for i, name := range defaultBoardColumns {
			col := models.BoardColumn{
				ProjectID: project.ID,
				Name:      name,
				Position:  i,
			}
			if err := tx.Create(&col).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// List returns the projects visible to the user: their memberships, or
// every project for a system administrator.
func (s *ProjectService) List(userID uint) ([]models.Project, error) {
	isAdmin, err := s.authz.IsSystemAdmin(userID)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	query := s.db.Model(&models.Project{}).Order("created_at DESC")
	if !isAdmin {
		query = query.
			Joins("JOIN project_members ON project_members.project_id = projects.id").
			Where("project_members.user_id = ?", userID)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) Get(userID, projectID uint) (*models.Project, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Update(userID, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.IMEnabled != nil {
		project.IMEnabled = *req.IMEnabled
	}
	if req.IMBotID != nil {
		project.IMBotID = req.IMBotID
	}

	if err := s.db.Save(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Delete(userID, projectID uint) error {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectDelete); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Project{}, projectID).Error; err != nil {
			return err
		}

		// Ticket children and delivery logs go first, while their
		// parents are still visible to the subqueries.
		if err := tx.Where("ticket_id IN (?)",
			tx.Model(&models.Ticket{}).Select("id").Where("project_id = ?", projectID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ticket_id IN (?)",
			tx.Model(&models.Ticket{}).Select("id").Where("project_id = ?", projectID),
		).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM ticket_labels WHERE ticket_id IN (?)",
			tx.Model(&models.Ticket{}).Select("id").Where("project_id = ?", projectID),
		).Error; err != nil {
			return err
		}
		if err := tx.Where("webhook_id IN (?)",
			tx.Model(&models.Webhook{}).Select("id").Where("project_id = ?", projectID),
		).Delete(&models.WebhookDelivery{}).Error; err != nil {
			return err
		}

		for _, m := range []interface{}{
			&models.Ticket{}, &models.ProjectMember{}, &models.Role{},
			&models.BoardColumn{}, &models.Label{}, &models.Sprint{},
			&models.Webhook{},
		} {
			if err := tx.Where("project_id = ?", projectID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

type RoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Position    int      `json:"position" binding:"required,min=1"`
	Permissions []string `json:"permissions"`
}

// ListRoles returns the project's roles ordered by authority.
func (s *ProjectService) ListRoles(userID, projectID uint) ([]models.Role, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}
	var roles []models.Role
	if err := s.db.Where("project_id = ?", projectID).Order("position ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole adds a custom role. Position 0 is reserved for the built-in
// Owner role, every permission tag must come from the fixed catalog, and
// both name and position must be unique within the project. The
// uniqueness check runs inside the write transaction so concurrent role
// writes cannot leave two roles sharing a slot.
func (s *ProjectService) CreateRole(userID, projectID uint, req *RoleRequest) (*models.Role, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}
	if err := validatePermissionTags(req.Permissions); err != nil {
		return nil, err
	}

	role := models.Role{
		ProjectID:   projectID,
		Name:        req.Name,
		Position:    req.Position,
		Permissions: models.PermissionList(req.Permissions),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := roleSlotAvailable(tx, projectID, 0, req.Name, req.Position); err != nil {
			return err
		}
		return tx.Create(&role).Error
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *ProjectService) UpdateRole(userID, projectID, roleID uint, req *RoleRequest) (*models.Role, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}
	if err := validatePermissionTags(req.Permissions); err != nil {
		return nil, err
	}

	var role models.Role
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).First(&role, roleID).Error; err != nil {
			return err
		}
		if role.IsDefault && req.Position != role.Position {
			return errors.New("the default role's position cannot change")
		}
		if err := roleSlotAvailable(tx, projectID, role.ID, req.Name, req.Position); err != nil {
			return err
		}

		role.Name = req.Name
		role.Position = req.Position
		role.Permissions = models.PermissionList(req.Permissions)
		return tx.Save(&role).Error
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// roleSlotAvailable reports whether the name and position are free within
// the project. selfID excludes the role being updated (0 for a new role).
func roleSlotAvailable(tx *gorm.DB, projectID, selfID uint, name string, position int) error {
	var count int64
	if err := tx.Model(&models.Role{}).
		Where("project_id = ? AND position = ? AND id <> ?", projectID, position, selfID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("position %d is already used by another role", position)
	}

	if err := tx.Model(&models.Role{}).
		Where("project_id = ? AND name = ? AND id <> ?", projectID, name, selfID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("role name %q is already used", name)
	}
	return nil
}

func (s *ProjectService) DeleteRole(userID, projectID, roleID uint) error {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return err
	}

	var role models.Role
	if err := s.db.Where("project_id = ?", projectID).First(&role, roleID).Error; err != nil {
		return err
	}
	if role.IsDefault {
		return errors.New("the default role cannot be deleted")
	}

	var inUse int64
	s.db.Model(&models.ProjectMember{}).Where("role_id = ?", roleID).Count(&inUse)
	if inUse > 0 {
		return fmt.Errorf("role is assigned to %d member(s)", inUse)
	}

	return s.db.Delete(&role).Error
}

func validatePermissionTags(tags []string) error {
	for _, t := range tags {
		if !authz.Valid(authz.Permission(t)) {
			return fmt.Errorf("unknown permission %q", t)
		}
	}
	return nil
}
