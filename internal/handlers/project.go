package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB, authzSvc *authz.Service) *ProjectHandler {
	return &ProjectHandler{projectService: services.NewProjectService(db, authzSvc)}
}

// List returns the projects visible to the caller
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, projects)
}

// Create provisions a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, project)
}

// Get returns a single project
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, project)
}

// Update modifies project settings
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes a project and all of its data
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(middleware.GetUserID(c), projectID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project deleted"})
}

// ListRoles returns the project's roles ordered by authority
// GET /api/projects/:id/roles
func (h *ProjectHandler) ListRoles(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	roles, err := h.projectService.ListRoles(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, roles)
}

// CreateRole adds a custom role
// POST /api/projects/:id/roles
func (h *ProjectHandler) CreateRole(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.projectService.CreateRole(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, role)
}

// UpdateRole modifies a role's name, position or permission set
// PUT /api/projects/:id/roles/:roleId
func (h *ProjectHandler) UpdateRole(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(c, "roleId")
	if !ok {
		return
	}

	var req services.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.projectService.UpdateRole(middleware.GetUserID(c), projectID, roleID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, role)
}

// DeleteRole removes an unused custom role
// DELETE /api/projects/:id/roles/:roleId
func (h *ProjectHandler) DeleteRole(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(c, "roleId")
	if !ok {
		return
	}

	if err := h.projectService.DeleteRole(middleware.GetUserID(c), projectID, roleID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "role deleted"})
}

// ListPermissions returns the permission catalog
// GET /api/permissions
func (h *ProjectHandler) ListPermissions(c *gin.Context) {
	response.Success(c, authz.AllPermissions)
}
