package handlers

import (
	"net/http"
	"strconv"

	"github.com/swoyamsuwal/django-twitter/internal/dto"
	"github.com/swoyamsuwal/django-twitter/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFoundBody = gin.H{"detail": "Not found."}

// parseID reads a positive integer path parameter. Anything else cannot
// match a tweet route, so it is answered with 404.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, notFoundBody)
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body into obj and answers 400 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if fields, ok := dto.BindErrors(err); ok {
		c.JSON(http.StatusBadRequest, fields)
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
	return false
}

func fieldError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, dto.FieldErrors{field: {msg}})
}

func internalError(c *gin.Context, log *zap.Logger, msg string, err error) {
	log.Error(msg,
		zap.Error(err),
		zap.String("request_id", middleware.RequestIDFromContext(c)),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
