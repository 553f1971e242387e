package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(db *gorm.DB, authzSvc *authz.Service, dispatcher *services.Dispatcher) *TicketHandler {
	return &TicketHandler{ticketService: services.NewTicketService(db, authzSvc, dispatcher)}
}

// List returns the project's tickets with filters and pagination
// GET /api/projects/:id/tickets
func (h *TicketHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.TicketListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.ticketService.List(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// Create opens a new ticket
// POST /api/projects/:id/tickets
func (h *TicketHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Create(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, ticket)
}

// Get returns a single ticket with its associations
// GET /api/projects/:id/tickets/:ticketId
func (h *TicketHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(middleware.GetUserID(c), projectID, ticketID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, ticket)
}

// Update edits a ticket's fields
// PUT /api/projects/:id/tickets/:ticketId
func (h *TicketHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	var req services.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Update(middleware.GetUserID(c), projectID, ticketID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, ticket)
}

type moveTicketRequest struct {
	BoardColumnID uint `json:"board_column_id" binding:"required"`
}

// Move places a ticket in another board column
// POST /api/projects/:id/tickets/:ticketId/move
func (h *TicketHandler) Move(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	var req moveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Move(middleware.GetUserID(c), projectID, ticketID, req.BoardColumnID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, ticket)
}

type assignTicketRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

// Assign sets or clears the ticket's assignee
// POST /api/projects/:id/tickets/:ticketId/assign
func (h *TicketHandler) Assign(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	var req assignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Assign(middleware.GetUserID(c), projectID, ticketID, req.AssigneeID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, ticket)
}

// Delete removes a ticket
// DELETE /api/projects/:id/tickets/:ticketId
func (h *TicketHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return
	}

	if err := h.ticketService.Delete(middleware.GetUserID(c), projectID, ticketID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "ticket deleted"})
}
