package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// List returns the project's webhooks
// GET /api/projects/:id/webhooks
func (h *WebhookHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	hooks, err := h.webhookService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, hooks)
}

// Create registers a webhook endpoint
// POST /api/projects/:id/webhooks
func (h *WebhookHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	hook, err := h.webhookService.Create(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, hook)
}

// Update edits a webhook's endpoint, secret or event filter
// PUT /api/projects/:id/webhooks/:webhookId
func (h *WebhookHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	webhookID, ok := pathID(c, "webhookId")
	if !ok {
		return
	}

	var req services.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	hook, err := h.webhookService.Update(middleware.GetUserID(c), projectID, webhookID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, hook)
}

// Delete removes a webhook
// DELETE /api/projects/:id/webhooks/:webhookId
func (h *WebhookHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	webhookID, ok := pathID(c, "webhookId")
	if !ok {
		return
	}

	if err := h.webhookService.Delete(middleware.GetUserID(c), projectID, webhookID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "webhook deleted"})
}

// ListDeliveries returns recent delivery attempts for a webhook
// GET /api/projects/:id/webhooks/:webhookId/deliveries
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	webhookID, ok := pathID(c, "webhookId")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	deliveries, err := h.webhookService.ListDeliveries(middleware.GetUserID(c), projectID, webhookID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, deliveries)
}
