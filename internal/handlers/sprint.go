package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
)

type SprintHandler struct {
	sprintService *services.SprintService
}

func NewSprintHandler(sprintService *services.SprintService) *SprintHandler {
	return &SprintHandler{sprintService: sprintService}
}

// List returns the project's sprints with remaining workdays
// GET /api/projects/:id/sprints
func (h *SprintHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sprints, err := h.sprintService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, sprints)
}

// Get returns a single sprint
// GET /api/projects/:id/sprints/:sprintId
func (h *SprintHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sprintID, ok := pathID(c, "sprintId")
	if !ok {
		return
	}

	sprint, err := h.sprintService.Get(middleware.GetUserID(c), projectID, sprintID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, sprint)
}

// Create adds a planned sprint
// POST /api/projects/:id/sprints
func (h *SprintHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.SprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprintService.Create(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, sprint)
}

// Update edits a sprint that is not yet closed
// PUT /api/projects/:id/sprints/:sprintId
func (h *SprintHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sprintID, ok := pathID(c, "sprintId")
	if !ok {
		return
	}

	var req services.SprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprintService.Update(middleware.GetUserID(c), projectID, sprintID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, sprint)
}

// Start activates a planned sprint
// POST /api/projects/:id/sprints/:sprintId/start
func (h *SprintHandler) Start(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sprintID, ok := pathID(c, "sprintId")
	if !ok {
		return
	}

	sprint, err := h.sprintService.Start(middleware.GetUserID(c), projectID, sprintID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, sprint)
}

// Close ends a sprint and returns unfinished tickets to the backlog
// POST /api/projects/:id/sprints/:sprintId/close
func (h *SprintHandler) Close(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sprintID, ok := pathID(c, "sprintId")
	if !ok {
		return
	}

	sprint, err := h.sprintService.Close(middleware.GetUserID(c), projectID, sprintID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, sprint)
}
