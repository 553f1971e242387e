package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type LabelHandler struct {
	labelService *services.LabelService
}

func NewLabelHandler(db *gorm.DB, authzSvc *authz.Service) *LabelHandler {
	return &LabelHandler{labelService: services.NewLabelService(db, authzSvc)}
}

// List returns the project's labels
// GET /api/projects/:id/labels
func (h *LabelHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	labels, err := h.labelService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, labels)
}

// Create adds a label
// POST /api/projects/:id/labels
func (h *LabelHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	label, err := h.labelService.Create(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, label)
}

// Update edits a label's name or color
// PUT /api/projects/:id/labels/:labelId
func (h *LabelHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "labelId")
	if !ok {
		return
	}

	var req services.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	label, err := h.labelService.Update(middleware.GetUserID(c), projectID, labelID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, label)
}

// Delete removes a label and detaches it from tickets
// DELETE /api/projects/:id/labels/:labelId
func (h *LabelHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "labelId")
	if !ok {
		return
	}

	if err := h.labelService.Delete(middleware.GetUserID(c), projectID, labelID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "label deleted"})
}
