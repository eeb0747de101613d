package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/middleware"
	"github.com/studio-desk/services"
)

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(status int, err error) gin.H {
	body := gin.H{"status": "error", "message": err.Error()}
	switch status {
	case http.StatusInternalServerError:
		body["message"] = "Internal server error"
	case http.StatusUnauthorized:
		body["redirect"] = "/login"
	}
	return body
}

// queryError reports a failed read.
func queryError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, errorBody(status, err))
}

// mutationError reports a failed write with a destructive notification.
func mutationError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	body := errorBody(status, err)
	body["notification"] = gin.H{"variant": "destructive"}
	c.JSON(status, body)
}

// bind decodes and validates a JSON body, answering 400 on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":       "error",
			"message":      "Invalid request body",
			"error":        err.Error(),
			"notification": gin.H{"variant": "destructive"},
		})
		return false
	}
	return true
}

func capabilities(c *gin.Context) (services.Capabilities, bool) {
	caps, ok := middleware.Capabilities(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":   "error",
			"message":  "User not authenticated",
			"redirect": "/login",
		})
	}
	return caps, ok
}
