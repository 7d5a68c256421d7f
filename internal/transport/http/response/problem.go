// Package response writes the problem documents every failed request answers
// with.
package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskgate/internal/pkg/traceid"
)

const ProblemContentType = "application/problem+json"

const (
	TitleUnexpectedFault = "An unexpected error occurred!"
	TitleValidation      = "One or more validation errors occurred."
	TitleConfiguration   = "Configuration Error"
)

type Problem struct {
	Type     string   `json:"type,omitempty"`
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Instance string   `json:"instance,omitempty"`
	TraceID  string   `json:"traceId,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

var typeByStatus = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc7231#section-6.5.1",
	http.StatusUnauthorized:        "https://tools.ietf.org/html/rfc7235#section-3.1",
	http.StatusForbidden:           "https://tools.ietf.org/html/rfc7231#section-6.5.3",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc7231#section-6.5.4",
	http.StatusMethodNotAllowed:    "https://tools.ietf.org/html/rfc7231#section-6.5.5",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc7231#section-6.6.1",
	http.StatusServiceUnavailable:  "https://tools.ietf.org/html/rfc7231#section-6.6.4",
}

// StatusTitle is the title used when a request ends with a bare status.
func StatusTitle(code int) string {
	switch code {
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusUnauthorized:
		return "Unauthorized."
	case http.StatusForbidden:
		return "Forbidden."
	default:
		return fmt.Sprintf("HTTP %d", code)
	}
}

// NewProblem fills type, instance and trace id from the request.
func NewProblem(c *gin.Context, status int, title string) Problem {
	return Problem{
		Type:     typeByStatus[status],
		Title:    title,
		Status:   status,
		Instance: c.Request.URL.Path,
		TraceID:  traceid.FromContext(c.Request.Context()),
	}
}

func WriteProblem(c *gin.Context, p Problem) {
	c.Header("Content-Type", ProblemContentType)
	c.JSON(p.Status, p)
}

// StatusProblem answers with the status-only document: a fixed title per
// status and no detail.
func StatusProblem(c *gin.Context, status int) {
	WriteProblem(c, NewProblem(c, status, StatusTitle(status)))
}

func ValidationProblem(c *gin.Context, reasons []string) {
	p := NewProblem(c, http.StatusBadRequest, TitleValidation)
	p.Errors = reasons
	WriteProblem(c, p)
}

// FaultProblem answers 500. The fault text is only exposed when
// showDetail is set.
func FaultProblem(c *gin.Context, fault error, showDetail bool) {
	p := NewProblem(c, http.StatusInternalServerError, TitleUnexpectedFault)
	p.Detail = "Internal Server Error"
	if showDetail && fault != nil {
		p.Detail = fault.Error()
	}
	WriteProblem(c, p)
}
