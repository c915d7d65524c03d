package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Fixed error messages. Validation errors use the error's own text.
const (
	msgInvalidJSON = "invalid JSON body"
	msgNotFound    = "todo not found"
	msgInternal    = "internal error"
)

// maxBodyBytes caps the size of a JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// bindJSON decodes the request body into v, writing a 400 on failure.
// Bodies larger than maxBodyBytes fail to decode.
func bindJSON(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidJSON)
		return false
	}
	return true
}
