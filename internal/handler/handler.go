package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/triage-api/pkg/errors"
)

// BindJSON decodes the request body into obj. On failure the error is recorded on the
// context for the validation and error middleware to render, and false is returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid request body", err))
		return false
	}
	return true
}

// ParseID reads the numeric :id path parameter.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest("invalid id", err))
		return 0, false
	}
	return id, true
}
