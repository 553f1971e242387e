package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(db *gorm.DB, authzSvc *authz.Service) *BoardHandler {
	return &BoardHandler{boardService: services.NewBoardService(db, authzSvc)}
}

// ListColumns returns the board columns in order
// GET /api/projects/:id/board/columns
func (h *BoardHandler) ListColumns(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	columns, err := h.boardService.ListColumns(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, columns)
}

// CreateColumn appends a column to the board
// POST /api/projects/:id/board/columns
func (h *BoardHandler) CreateColumn(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.BoardColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	column, err := h.boardService.CreateColumn(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, column)
}

// UpdateColumn edits a column's name or WIP limit
// PUT /api/projects/:id/board/columns/:columnId
func (h *BoardHandler) UpdateColumn(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	columnID, ok := pathID(c, "columnId")
	if !ok {
		return
	}

	var req services.BoardColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	column, err := h.boardService.UpdateColumn(middleware.GetUserID(c), projectID, columnID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, column)
}

// DeleteColumn removes an empty column
// DELETE /api/projects/:id/board/columns/:columnId
func (h *BoardHandler) DeleteColumn(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	columnID, ok := pathID(c, "columnId")
	if !ok {
		return
	}

	if err := h.boardService.DeleteColumn(middleware.GetUserID(c), projectID, columnID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "column deleted"})
}

// ReorderColumns applies a full permutation of the board's columns
// PUT /api/projects/:id/board/columns/order
func (h *BoardHandler) ReorderColumns(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	columns, err := h.boardService.ReorderColumns(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, columns)
}
