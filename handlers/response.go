package handlers

import (
	"errors"
	"log"
	"net/http"

	"quizportal/services"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const internalError = "Internal Server Error"

// ErrorResponder writes service errors as envelopes. With Debug set, 500
// responses carry the underlying error text.
type ErrorResponder struct {
	Debug bool
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// Bind decodes the JSON body into obj and runs its binding tags. It writes
// the error response and returns false when the body is unusable.
func (r ErrorResponder) Bind(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	verr := services.ValidationError(err)
	switch {
	case errors.As(err, &tooLarge):
		fail(c, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(verr, services.ErrValidation):
		r.Error(c, verr)
	default:
		fail(c, http.StatusBadRequest, "Invalid request body")
	}
	return false
}

// Error maps err to a status code. Client-safe messages come from
// *services.Error; anything else is logged and reported as a 500.
func (r ErrorResponder) Error(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		message := internalError
		if r.Debug {
			message = err.Error()
		}
		fail(c, status, message)
		return
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		fail(c, status, svcErr.Message)
		return
	}
	fail(c, status, err.Error())
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingSecret):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Recovery turns panics into the 500 envelope.
func (r ErrorResponder) Recovery(c *gin.Context, recovered interface{}) {
	log.Printf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
	fail(c, http.StatusInternalServerError, internalError)
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "Route not found")
}
