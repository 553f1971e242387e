package services

import (
	"fmt"
	"time"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

type CommentService struct {
	db         *gorm.DB
	authz      *authz.Service
	dispatcher *Dispatcher
}

func NewCommentService(db *gorm.DB, authzSvc *authz.Service, dispatcher *Dispatcher) *CommentService {
	return &CommentService{db: db, authz: authzSvc, dispatcher: dispatcher}
}

type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (s *CommentService) List(userID, projectID, ticketID uint) ([]models.Comment, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	if _, err := s.ticketInProject(projectID, ticketID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create adds a comment. Any member may comment; no separate grant
// exists for it.
func (s *CommentService) Create(userID, projectID, ticketID uint, req *CommentRequest) (*models.Comment, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	ticket, err := s.ticketInProject(projectID, ticketID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		TicketID: ticketID,
		AuthorID: userID,
		Body:     req.Body,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err == nil {
		s.dispatcher.Dispatch(newEvent(EventCommentCreated, projectID, project.Key, userID,
			fmt.Sprintf("New comment on %s", ticket.DisplayKey(project.Key)),
			map[string]interface{}{
				"ticket_id":  ticket.ID,
				"ticket_key": ticket.DisplayKey(project.Key),
				"comment_id": comment.ID,
			}))
	}

	return &comment, nil
}

// Update edits a comment body. Authors always may edit their own;
// anyone else needs the comments moderation grant.
func (s *CommentService) Update(userID, projectID, ticketID, commentID uint, req *CommentRequest) (*models.Comment, error) {
	comment, err := s.loadForWrite(userID, projectID, ticketID, commentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment.Body = req.Body
	comment.EditedAt = &now
	if err := s.db.Save(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(userID, projectID, ticketID, commentID uint) error {
	comment, err := s.loadForWrite(userID, projectID, ticketID, commentID)
	if err != nil {
		return err
	}
	return s.db.Delete(comment).Error
}

func (s *CommentService) loadForWrite(userID, projectID, ticketID, commentID uint) (*models.Comment, error) {
	if _, err := s.ticketInProject(projectID, ticketID); err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := s.db.Where("ticket_id = ?", ticketID).First(&comment, commentID).Error; err != nil {
		return nil, err
	}

	if err := s.authz.RequireCommentPermission(userID, projectID, comment.AuthorID); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) ticketInProject(projectID, ticketID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Where("project_id = ?", projectID).First(&ticket, ticketID).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}
