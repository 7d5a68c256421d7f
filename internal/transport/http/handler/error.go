package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskgate/internal/transport/http/response"
)

var errRequestedFault = errors.New("fault raised by the error endpoint")

// ErrorHandler exposes both problem document paths directly.
type ErrorHandler struct{}

func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Fault hands a fault to ErrorTranslator, which logs it with the trace id and
// writes the 500 document.
func (h *ErrorHandler) Fault(c *gin.Context) {
	_ = c.Error(errRequestedFault)
}

func (h *ErrorHandler) Status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 100 || code > 599 {
		c.Status(http.StatusNotFound)
		return
	}
	response.StatusProblem(c, code)
}

func Root(c *gin.Context) {
	c.String(http.StatusOK, "Root endpoint functioning")
}
