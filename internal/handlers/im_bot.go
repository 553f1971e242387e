package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

// IMBotHandler manages chat bots. All routes are admin-only; the
// AdminRequired middleware gates them before these methods run.
type IMBotHandler struct {
	imBotService *services.IMBotService
}

func NewIMBotHandler(db *gorm.DB) *IMBotHandler {
	return &IMBotHandler{imBotService: services.NewIMBotService(db)}
}

// List returns configured bots with pagination
// GET /api/admin/im-bots
func (h *IMBotHandler) List(c *gin.Context) {
	var req services.IMBotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.imBotService.List(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns one bot
// GET /api/admin/im-bots/:id
func (h *IMBotHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bot, err := h.imBotService.GetByID(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, bot)
}

// Create registers a chat bot
// POST /api/admin/im-bots
func (h *IMBotHandler) Create(c *gin.Context) {
	var req services.CreateIMBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bot, err := h.imBotService.Create(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, bot)
}

// Update edits a chat bot
// PUT /api/admin/im-bots/:id
func (h *IMBotHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateIMBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bot, err := h.imBotService.Update(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, bot)
}

// Delete removes a bot that no project is bound to
// DELETE /api/admin/im-bots/:id
func (h *IMBotHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.imBotService.Delete(id); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "im bot deleted"})
}
