package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the JSON contract every endpoint answers with. The cache and
// notification layers never contribute to it: a request that committed its
// authoritative write is a success regardless of what happened downstream.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Data:    data,
	})
}

func SuccessMessage(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Code:    code,
		Message: message,
	})
}
