package services

import (
	"regexp"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

var labelColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type LabelService struct {
	db    *gorm.DB
	authz *authz.Service
}

func NewLabelService(db *gorm.DB, authzSvc *authz.Service) *LabelService {
	return &LabelService{db: db, authz: authzSvc}
}

type LabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

func (s *LabelService) List(userID, projectID uint) ([]models.Label, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	var labels []models.Label
	if err := s.db.Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (s *LabelService) Create(userID, projectID uint, req *LabelRequest) (*models.Label, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermLabelsManage); err != nil {
		return nil, err
	}

	label := models.Label{
		ProjectID: projectID,
		Name:      req.Name,
		Color:     normalizeLabelColor(req.Color),
	}
	if err := s.db.Create(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *LabelService) Update(userID, projectID, labelID uint, req *LabelRequest) (*models.Label, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermLabelsManage); err != nil {
		return nil, err
	}

	var label models.Label
	if err := s.db.Where("project_id = ?", projectID).First(&label, labelID).Error; err != nil {
		return nil, err
	}

	label.Name = req.Name
	if req.Color != "" {
		label.Color = normalizeLabelColor(req.Color)
	}
	if err := s.db.Save(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *LabelService) Delete(userID, projectID, labelID uint) error {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermLabelsManage); err != nil {
		return err
	}

	var label models.Label
	if err := s.db.Where("project_id = ?", projectID).First(&label, labelID).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM ticket_labels WHERE label_id = ?", label.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&label).Error
	})
}

func normalizeLabelColor(color string) string {
	if labelColorPattern.MatchString(color) {
		return color
	}
	return "#808080"
}
