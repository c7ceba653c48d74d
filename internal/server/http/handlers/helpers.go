package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) uuid.UUID {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := val.(uuid.UUID)
	return id
}

// pathID parses a UUID path parameter; on failure the request is finished
// with 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// abortDomainError maps business errors onto HTTP statuses.
func abortDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrAccessDenied):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrInvalidState),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrRevisionLimit):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrDesignFileRequired),
		errors.Is(err, domainErrors.ErrProductInactive):
		c.Status(http.StatusUnprocessableEntity)
	default:
		c.Status(http.StatusInternalServerError)
	}
}
