package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
)

// Pagination carries offset-based paging metadata for list responses.
type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}      `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Error      *appErrors.Error `json:"error,omitempty"`
	Pagination *Pagination      `json:"pagination,omitempty"`
}

// JSON sends a success response with a human-readable message.
func JSON(c *gin.Context, status int, data interface{}, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Message: message})
}

// Paginated sends a success response including pagination metadata.
func Paginated(c *gin.Context, status int, data interface{}, message string, pagination *Pagination) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Message: message, Pagination: pagination})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusOK, data, message)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
