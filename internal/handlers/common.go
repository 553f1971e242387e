package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/pkg/response"
	"gorm.io/gorm"
)

// handleServiceError maps service-layer failures to the response
// envelope: authorization denials become 403 with the engine's message,
// missing rows become 404, anything else is a 500.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case authz.IsForbidden(err):
		response.Forbidden(c, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "resource not found")
	default:
		response.ServerError(c, err.Error())
	}
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
