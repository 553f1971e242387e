package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

// SystemLogHandler exposes the audit trail to administrators.
type SystemLogHandler struct {
	systemLogService *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{systemLogService: services.NewSystemLogService(db)}
}

// List returns system logs with filters and pagination
// GET /api/admin/logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.systemLogService.List(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// Cleanup deletes logs older than the retention window
// POST /api/admin/logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("retention_days", "30"))

	deleted, err := h.systemLogService.Cleanup(days)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
