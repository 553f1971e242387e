package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(db *gorm.DB, authzSvc *authz.Service) *MemberHandler {
	return &MemberHandler{memberService: services.NewMemberService(db, authzSvc)}
}

// List returns the project's members
// GET /api/projects/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.memberService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, members)
}

// Invite adds a user to the project with a role
// POST /api/projects/:id/members
func (h *MemberHandler) Invite(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Invite(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, member)
}

// ChangeRole reassigns a member's role
// PUT /api/projects/:id/members/:userId
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req services.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.ChangeRole(middleware.GetUserID(c), projectID, targetID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, member)
}

// Remove kicks a member out of the project
// DELETE /api/projects/:id/members/:userId
func (h *MemberHandler) Remove(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.memberService.Remove(middleware.GetUserID(c), projectID, targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "member removed"})
}

// Leave lets the caller exit the project
// POST /api/projects/:id/members/leave
func (h *MemberHandler) Leave(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.Leave(middleware.GetUserID(c), projectID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "left project"})
}
