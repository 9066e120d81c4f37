package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamforge/internal/membership"
	"teamforge/middleware"
	"teamforge/utils"
)

// MappedError is a service error translated for an HTTP reply.
type MappedError struct {
	Status    int
	Message   string
	Retryable bool
	Errors    []string
}

// MapError converts a service error to its HTTP status and client message.
// Unknown errors become a 500 with a generic message.
func MapError(err error) MappedError {
	switch {
	case errors.Is(err, membership.ErrNotAuthenticated):
		return MappedError{Status: fiber.StatusUnauthorized, Message: membership.ErrNotAuthenticated.Error()}
	case errors.Is(err, membership.ErrNotAuthorized):
		return MappedError{Status: fiber.StatusForbidden, Message: membership.ErrNotAuthorized.Error()}
	case errors.Is(err, membership.ErrNotFound):
		return MappedError{Status: fiber.StatusNotFound, Message: membership.ErrNotFound.Error()}
	case errors.Is(err, membership.ErrSelfJoinNotAllowed):
		return MappedError{Status: fiber.StatusConflict, Message: membership.ErrSelfJoinNotAllowed.Error()}
	case errors.Is(err, membership.ErrAlreadyRequested):
		return MappedError{Status: fiber.StatusConflict, Message: membership.ErrAlreadyRequested.Error()}
	case errors.Is(err, membership.ErrAlreadyDecided):
		return MappedError{Status: fiber.StatusConflict, Message: membership.ErrAlreadyDecided.Error()}
	case errors.Is(err, membership.ErrInvalidDecision):
		return MappedError{Status: fiber.StatusUnprocessableEntity, Message: membership.ErrInvalidDecision.Error()}
	case errors.Is(err, membership.ErrInvalidProject):
		return MappedError{
			Status:  fiber.StatusUnprocessableEntity,
			Message: membership.ErrInvalidProject.Error(),
			Errors:  utils.FormatValidationErrors(err),
		}
	case membership.IsRetryable(err):
		return MappedError{Status: fiber.StatusServiceUnavailable, Message: "service temporarily unavailable, try again", Retryable: true}
	default:
		return MappedError{Status: fiber.StatusInternalServerError, Message: "internal server error"}
	}
}

// fail logs err with request context and writes the mapped error reply.
func (h *ApplicationHandler) fail(c *fiber.Ctx, err error) error {
	mapped := MapError(err)
	entry := h.Logger.WithFields(logrus.Fields{
		"request_id":  c.Locals(middleware.RequestIDKey),
		"status_code": mapped.Status,
		"error":       err.Error(),
	})
	if mapped.Status >= fiber.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request refused")
	}
	return utils.RespondWithErrorBody(c, mapped.Status, utils.ErrorResponse{
		Message:   mapped.Message,
		Retryable: mapped.Retryable,
		Errors:    mapped.Errors,
	})
}
