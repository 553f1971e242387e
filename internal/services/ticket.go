package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

type TicketService struct {
	db         *gorm.DB
	authz      *authz.Service
	dispatcher *Dispatcher
}

func NewTicketService(db *gorm.DB, authzSvc *authz.Service, dispatcher *Dispatcher) *TicketService {
	return &TicketService{db: db, authz: authzSvc, dispatcher: dispatcher}
}

type CreateTicketRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Type          string     `json:"type" binding:"omitempty,oneof=task bug story"`
	Priority      string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	BoardColumnID *uint      `json:"board_column_id"`
	SprintID      *uint      `json:"sprint_id"`
	AssigneeID    *uint      `json:"assignee_id"`
	DueDate       *time.Time `json:"due_date"`
	LabelIDs      []uint     `json:"label_ids"`
}

type UpdateTicketRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Type        string     `json:"type" binding:"omitempty,oneof=task bug story"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	SprintID    *uint      `json:"sprint_id"`
	DueDate     *time.Time `json:"due_date"`
	LabelIDs    *[]uint    `json:"label_ids"`
}

type TicketListRequest struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	Search        string `form:"search"`
	Type          string `form:"type"`
	Priority      string `form:"priority"`
	BoardColumnID *uint  `form:"board_column_id"`
	SprintID      *uint  `form:"sprint_id"`
	AssigneeID    *uint  `form:"assignee_id"`
	AuthorID      *uint  `form:"author_id"`
}

type TicketListResponse struct {
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Items    []models.Ticket `json:"items"`
}

// Create opens a new ticket. The per-project sequential number is
// allocated inside the insert transaction, so concurrent creators on
// the same project can never collide.
func (s *TicketService) Create(userID, projectID uint, req *CreateTicketRequest) (*models.Ticket, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermTicketsCreate); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	ticket := models.Ticket{
		ProjectID:     projectID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Priority:      req.Priority,
		BoardColumnID: req.BoardColumnID,
		SprintID:      req.SprintID,
		AssigneeID:    req.AssigneeID,
		DueDate:       req.DueDate,
		AuthorID:      userID,
	}
	if ticket.Type == "" {
		ticket.Type = "task"
	}
	if ticket.Priority == "" {
		ticket.Priority = "medium"
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		row := tx.Model(&models.Ticket{}).Unscoped().
			Where("project_id = ?", projectID).
			Select("COALESCE(MAX(number), 0)").Row()
		if err := row.Scan(&maxNumber); err != nil {
			return err
		}
		ticket.Number = maxNumber + 1

		if ticket.BoardColumnID == nil {
			var first models.BoardColumn
			if err := tx.Where("project_id = ?", projectID).
				Order("position ASC").First(&first).Error; err == nil {
				ticket.BoardColumnID = &first.ID
			}
		}

		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}

		if len(req.LabelIDs) > 0 {
			labels, err := projectLabels(tx, projectID, req.LabelIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&ticket).Association("Labels").Replace(labels); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(newEvent(EventTicketCreated, projectID, project.Key, userID,
		fmt.Sprintf("%s %s", ticket.DisplayKey(project.Key), ticket.Title),
		map[string]interface{}{
			"ticket_id":  ticket.ID,
			"ticket_key": ticket.DisplayKey(project.Key),
			"title":      ticket.Title,
		}))

	return &ticket, nil
}

func (s *TicketService) List(userID, projectID uint, req *TicketListRequest) (*TicketListResponse, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 25
	}

	query := s.db.Model(&models.Ticket{}).Where("project_id = ?", projectID)
	if req.Search != "" {
		query = query.Where("title LIKE ?", "%"+req.Search+"%")
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.BoardColumnID != nil {
		query = query.Where("board_column_id = ?", *req.BoardColumnID)
	}
	if req.SprintID != nil {
		query = query.Where("sprint_id = ?", *req.SprintID)
	}
	if req.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *req.AssigneeID)
	}
	if req.AuthorID != nil {
		query = query.Where("author_id = ?", *req.AuthorID)
	}

	var total int64
	query.Count(&total)

	var tickets []models.Ticket
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Author").Preload("Assignee").Preload("Labels").
		Order("number DESC").Offset(offset).Limit(req.PageSize).
		Find(&tickets).Error; err != nil {
		return nil, err
	}

	return &TicketListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    tickets,
	}, nil
}

func (s *TicketService) Get(userID, projectID, ticketID uint) (*models.Ticket, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	var ticket models.Ticket
	if err := s.db.Preload("Author").Preload("Assignee").Preload("Labels").
		Where("project_id = ?", projectID).
		First(&ticket, ticketID).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketService) Update(userID, projectID, ticketID uint, req *UpdateTicketRequest) (*models.Ticket, error) {
	ticket, project, err := s.loadForWrite(userID, projectID, ticketID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		ticket.Title = req.Title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Type != "" {
		ticket.Type = req.Type
	}
	if req.Priority != "" {
		ticket.Priority = req.Priority
	}
	if req.SprintID != nil {
		ticket.SprintID = req.SprintID
	}
	if req.DueDate != nil {
		ticket.DueDate = req.DueDate
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ticket).Error; err != nil {
			return err
		}
		if req.LabelIDs != nil {
			labels, err := projectLabels(tx, projectID, *req.LabelIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(ticket).Association("Labels").Replace(labels); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(newEvent(EventTicketUpdated, projectID, project.Key, userID,
		fmt.Sprintf("%s %s", ticket.DisplayKey(project.Key), ticket.Title),
		map[string]interface{}{
			"ticket_id":  ticket.ID,
			"ticket_key": ticket.DisplayKey(project.Key),
		}))

	return ticket, nil
}

// Move places the ticket in a different board column.
func (s *TicketService) Move(userID, projectID, ticketID, columnID uint) (*models.Ticket, error) {
	ticket, project, err := s.loadForWrite(userID, projectID, ticketID)
	if err != nil {
		return nil, err
	}

	var column models.BoardColumn
	if err := s.db.Where("project_id = ?", projectID).First(&column, columnID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("board column does not belong to this project")
		}
		return nil, err
	}

	if column.WIPLimit != nil {
		var inColumn int64
		s.db.Model(&models.Ticket{}).
			Where("board_column_id = ? AND id <> ?", column.ID, ticket.ID).
			Count(&inColumn)
		if inColumn >= int64(*column.WIPLimit) {
			return nil, fmt.Errorf("column %q is at its WIP limit of %d", column.Name, *column.WIPLimit)
		}
	}

	ticket.BoardColumnID = &column.ID
	if err := s.db.Save(ticket).Error; err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(newEvent(EventTicketMoved, projectID, project.Key, userID,
		fmt.Sprintf("%s moved to %s", ticket.DisplayKey(project.Key), column.Name),
		map[string]interface{}{
			"ticket_id":  ticket.ID,
			"ticket_key": ticket.DisplayKey(project.Key),
			"column":     column.Name,
		}))

	return ticket, nil
}

// Assign sets or clears the assignee. An assignee must be a member of
// the project.
func (s *TicketService) Assign(userID, projectID, ticketID uint, assigneeID *uint) (*models.Ticket, error) {
	ticket, project, err := s.loadForWrite(userID, projectID, ticketID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		var count int64
		s.db.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, *assigneeID).
			Count(&count)
		if count == 0 {
			return nil, errors.New("assignee is not a member of this project")
		}
	}

	ticket.AssigneeID = assigneeID
	if err := s.db.Save(ticket).Error; err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(newEvent(EventTicketAssigned, projectID, project.Key, userID,
		fmt.Sprintf("%s assignee changed", ticket.DisplayKey(project.Key)),
		map[string]interface{}{
			"ticket_id":   ticket.ID,
			"ticket_key":  ticket.DisplayKey(project.Key),
			"assignee_id": assigneeID,
		}))

	return ticket, nil
}

func (s *TicketService) Delete(userID, projectID, ticketID uint) error {
	ticket, project, err := s.loadForWrite(userID, projectID, ticketID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(ticket).Error; err != nil {
		return err
	}

	s.dispatcher.Dispatch(newEvent(EventTicketDeleted, projectID, project.Key, userID,
		fmt.Sprintf("%s %s", ticket.DisplayKey(project.Key), ticket.Title),
		map[string]interface{}{
			"ticket_id":  ticket.ID,
			"ticket_key": ticket.DisplayKey(project.Key),
		}))

	return nil
}

// loadForWrite fetches the ticket and applies the ticket write guard:
// authors need an explicit own-tickets grant, everyone else the
// manage-any grant.
func (s *TicketService) loadForWrite(userID, projectID, ticketID uint) (*models.Ticket, *models.Project, error) {
	var ticket models.Ticket
	if err := s.db.Where("project_id = ?", projectID).First(&ticket, ticketID).Error; err != nil {
		return nil, nil, err
	}

	if err := s.authz.RequireTicketPermission(userID, projectID, ticket.AuthorID); err != nil {
		return nil, nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, nil, err
	}
	return &ticket, &project, nil
}

// projectLabels resolves label ids and rejects labels from other
// projects.
func projectLabels(tx *gorm.DB, projectID uint, ids []uint) ([]models.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var labels []models.Label
	if err := tx.Where("project_id = ? AND id IN ?", projectID, ids).Find(&labels).Error; err != nil {
		return nil, err
	}
	if len(labels) != len(ids) {
		return nil, errors.New("one or more labels do not belong to this project")
	}
	return labels, nil
}
