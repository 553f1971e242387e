package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/services"
)

// HealthHandler reports subsystem status.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems
// GET /api/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	sseClients := services.GetEventHub().ClientCount()

	var activeSprints int64
	models.GetDB().Model(&models.Sprint{}).
		Where("status = ?", models.SprintActive).
		Count(&activeSprints)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "tracknest",
		"components": gin.H{
			"database":       dbStatus,
			"queue_mode":     queueMode,
			"sse_clients":    sseClients,
			"active_sprints": activeSprints,
		},
	})
}
