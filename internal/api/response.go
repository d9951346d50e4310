package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"demo_wallet/internal/domain" // Error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Envelope is the body of every JSON response
type Envelope struct {
	Success bool     `json:"success"`          // Whether the operation committed
	Message string   `json:"message"`          // Human readable outcome
	Data    any      `json:"data,omitempty"`   // Payload on success
	Error   string   `json:"error,omitempty"`  // Error kind on failure
	Errors  []string `json:"errors,omitempty"` // Individual validation failures
}

// ok writes a successful envelope
func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// fail maps err onto its status and envelope. Causes of non-operational errors are
// logged and never sent to the client.
func fail(c *gin.Context, log logrus.FieldLogger, err error) {
	var e *domain.Error
	if !errors.As(err, &e) {
		e = domain.Database("unexpected error", err)
	}
	body := Envelope{Message: e.Message, Error: e.Kind.String(), Errors: e.Details}
	switch e.Kind {
	case domain.KindDatabase:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		body.Message = "Internal server error"
		if e.Retryable {
			c.Header("Retry-After", "1")
		}
	case domain.KindExternalService:
		log.WithError(err).WithField("path", c.FullPath()).Error("Collaborator failed")
	}
	c.AbortWithStatusJSON(e.Kind.Status(), body)
}

// badRequest reports an unreadable request body
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Message: "Invalid request body",
		Error:   domain.KindValidation.String(),
		Errors:  []string{err.Error()},
	})
}
