package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Retryable bool     `json:"retryable,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// SuccessResponse is the body of every successful reply.
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// RespondWithError sends a JSON error response.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return RespondWithErrorBody(c, statusCode, ErrorResponse{Message: message})
}

// RespondWithErrorBody sends a JSON error response with retry and field details.
func RespondWithErrorBody(c *fiber.Ctx, statusCode int, body ErrorResponse) error {
	body.Status = "error"
	return c.Status(statusCode).JSON(body)
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(c *fiber.Ctx, statusCode int, message string, data interface{}) error {
	return c.Status(statusCode).JSON(SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// FormatValidationErrors formats validation errors from validator/v10.
// err may wrap the validator.ValidationErrors.
func FormatValidationErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		element := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			element = fmt.Sprintf("%s (value: %s)", element, fe.Param())
		}
		messages = append(messages, element)
	}
	return messages
}

// SanitizeInput trims surrounding whitespace and lower-cases a keyword
// argument such as a decision.
func SanitizeInput(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
