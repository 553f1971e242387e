package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

func NewAttachmentHandler(db *gorm.DB, authzSvc *authz.Service, storage *config.StorageConfig) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: services.NewAttachmentService(db, authzSvc, storage)}
}

// List returns a ticket's attachments
// GET /api/projects/:id/tickets/:ticketId/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	attachments, err := h.attachmentService.List(middleware.GetUserID(c), projectID, ticketID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, attachments)
}

// Upload stores a file against a ticket
// POST /api/projects/:id/tickets/:ticketId/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	attachment, err := h.attachmentService.Upload(middleware.GetUserID(c), projectID, ticketID, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, attachment)
}

// Download streams the stored file back to the client
// GET /api/projects/:id/tickets/:ticketId/attachments/:attachmentId
func (h *AttachmentHandler) Download(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentId")
	if !ok {
		return
	}

	attachment, reader, err := h.attachmentService.Open(middleware.GetUserID(c), projectID, ticketID, attachmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.DataFromReader(http.StatusOK, attachment.Size, contentType, reader, nil)
}

// Delete removes an attachment record and its stored file
// DELETE /api/projects/:id/tickets/:ticketId/attachments/:attachmentId
func (h *AttachmentHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(middleware.GetUserID(c), projectID, ticketID, attachmentID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "attachment deleted"})
}
