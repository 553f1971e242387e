package services

import (
	"errors"
	"fmt"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

type BoardService struct {
	db    *gorm.DB
	authz *authz.Service
}

func NewBoardService(db *gorm.DB, authzSvc *authz.Service) *BoardService {
	return &BoardService{db: db, authz: authzSvc}
}

type BoardColumnRequest struct {
	Name     string `json:"name" binding:"required"`
	WIPLimit *int   `json:"wip_limit"`
}

type ReorderColumnsRequest struct {
	ColumnIDs []uint `json:"column_ids" binding:"required"`
}

func (s *BoardService) ListColumns(userID, projectID uint) ([]models.BoardColumn, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	var columns []models.BoardColumn
	if err := s.db.Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// CreateColumn appends a column at the end of the board.
func (s *BoardService) CreateColumn(userID, projectID uint, req *BoardColumnRequest) (*models.BoardColumn, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermBoardManage); err != nil {
		return nil, err
	}
	if req.WIPLimit != nil && *req.WIPLimit < 1 {
		return nil, errors.New("WIP limit must be at least 1")
	}

	var column models.BoardColumn
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxPos int
		row := tx.Model(&models.BoardColumn{}).
			Where("project_id = ?", projectID).
			Select("COALESCE(MAX(position), -1)").Row()
		if err := row.Scan(&maxPos); err != nil {
			return err
		}

		column = models.BoardColumn{
			ProjectID: projectID,
			Name:      req.Name,
			Position:  maxPos + 1,
			WIPLimit:  req.WIPLimit,
		}
		return tx.Create(&column).Error
	})
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (s *BoardService) UpdateColumn(userID, projectID, columnID uint, req *BoardColumnRequest) (*models.BoardColumn, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermBoardManage); err != nil {
		return nil, err
	}
	if req.WIPLimit != nil && *req.WIPLimit < 1 {
		return nil, errors.New("WIP limit must be at least 1")
	}

	var column models.BoardColumn
	if err := s.db.Where("project_id = ?", projectID).First(&column, columnID).Error; err != nil {
		return nil, err
	}

	column.Name = req.Name
	column.WIPLimit = req.WIPLimit
	if err := s.db.Save(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// DeleteColumn removes an empty column and renumbers the rest so
// positions stay contiguous.
func (s *BoardService) DeleteColumn(userID, projectID, columnID uint) error {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermBoardManage); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var column models.BoardColumn
		if err := tx.Where("project_id = ?", projectID).First(&column, columnID).Error; err != nil {
			return err
		}

		var tickets int64
		tx.Model(&models.Ticket{}).Where("board_column_id = ?", column.ID).Count(&tickets)
		if tickets > 0 {
			return fmt.Errorf("column %q still holds %d ticket(s)", column.Name, tickets)
		}

		if err := tx.Delete(&column).Error; err != nil {
			return err
		}

		var rest []models.BoardColumn
		if err := tx.Where("project_id = ?", projectID).
			Order("position ASC").
			Find(&rest).Error; err != nil {
			return err
		}
		for i := range rest {
			if rest[i].Position != i {
				if err := tx.Model(&rest[i]).Update("position", i).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ReorderColumns applies a full new ordering. The request must name
// every column of the project exactly once.
func (s *BoardService) ReorderColumns(userID, projectID uint, req *ReorderColumnsRequest) ([]models.BoardColumn, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermBoardManage); err != nil {
		return nil, err
	}

	var columns []models.BoardColumn
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Find(&columns).Error; err != nil {
			return err
		}
		if len(req.ColumnIDs) != len(columns) {
			return errors.New("reorder must include every column exactly once")
		}

		byID := make(map[uint]*models.BoardColumn, len(columns))
		for i := range columns {
			byID[columns[i].ID] = &columns[i]
		}

		seen := make(map[uint]bool, len(req.ColumnIDs))
		for pos, id := range req.ColumnIDs {
			column, ok := byID[id]
			if !ok || seen[id] {
				return errors.New("reorder must include every column exactly once")
			}
			seen[id] = true
			if column.Position != pos {
				if err := tx.Model(column).Update("position", pos).Error; err != nil {
					return err
				}
				column.Position = pos
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var ordered []models.BoardColumn
	if err := s.db.Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&ordered).Error; err != nil {
		return nil, err
	}
	return ordered, nil
}
