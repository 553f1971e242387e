package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(db *gorm.DB, authzSvc *authz.Service, dispatcher *services.Dispatcher) *CommentHandler {
	return &CommentHandler{commentService: services.NewCommentService(db, authzSvc, dispatcher)}
}

// List returns a ticket's comments oldest first
// GET /api/projects/:id/tickets/:ticketId/comments
func (h *CommentHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	comments, err := h.commentService.List(middleware.GetUserID(c), projectID, ticketID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, comments)
}

// Create adds a comment to a ticket
// POST /api/projects/:id/tickets/:ticketId/comments
func (h *CommentHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(middleware.GetUserID(c), projectID, ticketID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, comment)
}

// Update edits a comment's body
// PUT /api/projects/:id/tickets/:ticketId/comments/:commentId
func (h *CommentHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(middleware.GetUserID(c), projectID, ticketID, commentID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, comment)
}

// Delete removes a comment
// DELETE /api/projects/:id/tickets/:ticketId/comments/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.commentService.Delete(middleware.GetUserID(c), projectID, ticketID, commentID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "comment deleted"})
}
